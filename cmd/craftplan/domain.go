package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var domainCmd = &cobra.Command{
	Use:   "domain",
	Short: "Inspect the method library",
	Long: `Display the tasks and methods in the active domain.

Methods are listed per task in priority order, highest first, with
their subtask sequences.

Examples:
  craftplan domain
  craftplan domain --domain domains/voxel.yaml`,
	RunE: runDomain,
}

func runDomain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	domain, err := loadDomain(cfg)
	if err != nil {
		return err
	}
	state, err := loadState(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("%s  %d tasks, %d methods\n\n",
		color.CyanString(domain.Name()), domain.TaskCount(), domain.MethodCount())

	faint := color.New(color.Faint)
	for _, taskName := range domain.TaskNames() {
		fmt.Println(color.New(color.Bold).Sprint(taskName))
		for _, m := range domain.MethodsForTask(taskName) {
			marker := "✗"
			if m.CheckPreconditions(state) {
				marker = color.GreenString("✓")
			}
			fmt.Printf("  %s [%3d] %s", marker, m.Priority(), m.Name())
			if desc := m.Description(); desc != "" {
				fmt.Printf("  %s", faint.Sprint(desc))
			}
			fmt.Println()
			for _, sub := range m.Subtasks() {
				kind := "compound"
				if sub.IsPrimitive() {
					kind = "primitive"
				}
				fmt.Printf("        %s %s\n", faint.Sprintf("%-9s", kind), sub.Name())
			}
		}
		fmt.Println()
	}
	return nil
}
