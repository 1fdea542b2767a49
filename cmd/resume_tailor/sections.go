package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/schemas"
)

var sectionsCommand = &cobra.Command{
	Use:   "sections",
	Short: "List the known resume sections, agents and templates",
	RunE:  runSectionsCmd,
}

func init() {
	rootCmd.AddCommand(sectionsCommand)
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func runSectionsCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	configurator, err := a.configurator()
	if err != nil {
		return err
	}
	registry := configurator.Registry()
	catalog := configurator.Catalog()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Sections:")
	for _, s := range registry.Sections {
		marker := " "
		if schemas.IsCore(s.Name) {
			marker = "*"
		}
		fmt.Fprintf(out, " %s %-16s %-10s %s\n", marker, s.Name, s.Kind, s.Description)
	}

	fmt.Fprintln(out, "\nAgents:")
	for _, ag := range catalog.Agents {
		marker := " "
		if ag.Core {
			marker = "*"
		}
		fmt.Fprintf(out, " %s %-22s phase %d  %s\n", marker, ag.Name, ag.Phase, ag.Description)
	}

	fmt.Fprintln(out, "\nTemplates:")
	for _, name := range catalog.TemplateNames() {
		tmpl, _ := catalog.Template(name)
		fmt.Fprintf(out, "   %-22s %s\n", name, strings.Join(tmpl.Sections, ", "))
	}

	fmt.Fprintln(out, "\n* always enabled")
	return nil
}
