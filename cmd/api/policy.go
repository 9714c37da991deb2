package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/clinic-pos/internal/access"
	"github.com/spec-kit/clinic-pos/internal/domain"
)

// errDenied makes `policy check` exit non-zero for denied pairs.
var errDenied = errors.New("access denied")

func newPolicyCommand(out io.Writer) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the route access policy",
	}
	cmd.PersistentFlags().StringVar(&file, "file", "", "YAML policy file (default: built-in table)")

	var path, role string
	check := &cobra.Command{
		Use:   "check",
		Short: "Report whether a role may view a path",
		RunE: func(_ *cobra.Command, _ []string) error {
			r, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			policy, err := access.Load(file)
			if err != nil {
				return err
			}
			rule, matched := policy.Match(path)
			if !matched {
				rule = "(none)"
			}
			allowed := policy.HasAccess(path, r)
			fmt.Fprintf(out, "path=%s role=%s rule=%s allowed=%t\n", path, r, rule, allowed)
			if !allowed {
				return errDenied
			}
			return nil
		},
	}
	check.Flags().StringVar(&path, "path", "", "route to check")
	check.Flags().StringVar(&role, "role", "", "staff role (admin|pharmacy|cashier|doctor)")
	_ = check.MarkFlagRequired("path")
	_ = check.MarkFlagRequired("role")

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the rule table, most specific first",
		RunE: func(_ *cobra.Command, _ []string) error {
			policy, err := access.Load(file)
			if err != nil {
				return err
			}
			for _, rule := range policy.Rules() {
				roles := make([]string, len(rule.Roles))
				for i, r := range rule.Roles {
					roles[i] = string(r)
				}
				fmt.Fprintf(out, "%-32s %s\n", rule.Pattern, strings.Join(roles, ","))
			}
			return nil
		},
	}

	cmd.AddCommand(check, list)
	return cmd
}
