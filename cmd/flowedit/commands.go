package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kode4food/argyll/editor/internal/clipboard"
	"github.com/kode4food/argyll/editor/internal/operation"
	"github.com/kode4food/argyll/editor/internal/tree"
	"github.com/kode4food/argyll/editor/pkg/api"
)

func (c *cli) stepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "steps FLOW",
		Short: "Print the step tree of a flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := loadFlow(args[0])
			if err != nil {
				return err
			}
			return printSteps(c.out, v.Trigger, 0)
		},
	}
}

func printSteps(w io.Writer, head *api.Step, depth int) error {
	for s := head; s != nil; s = s.Next {
		mark := ""
		if s.Skip {
			mark = " (skipped)"
		}
		_, err := fmt.Fprintf(w, "%s%s\t%s\t%s%s\n",
			strings.Repeat("  ", depth), s.Name, s.Type(), s.DisplayName, mark,
		)
		if err != nil {
			return err
		}
		for _, child := range tree.ChildChains(s) {
			if err := printSteps(w, child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *cli) applyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apply FLOW OPERATIONS",
		Short: "Apply a file of operations to a flow",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := loadFlow(args[0])
			if err != nil {
				return err
			}
			ops, err := loadOperations(args[1])
			if err != nil {
				return err
			}
			for i, op := range ops {
				next, err := operation.Apply(v, op)
				if err != nil {
					return fmt.Errorf("operation %d: %w", i+1, err)
				}
				v = next
			}
			return c.writeFlow(v, args[0])
		},
	}
}

func (c *cli) copyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "copy FLOW STEP...",
		Short: "Copy steps of a flow to the clipboard",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadFlow(args[0])
			if err != nil {
				return err
			}
			cb, err := c.openClipboard()
			if err != nil {
				return err
			}
			names := make([]api.StepName, 0, len(args)-1)
			for _, n := range args[1:] {
				names = append(names, api.StepName(n))
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()
			n, err := clipboard.Copy(ctx, cb, v, names)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.out, "copied %d step(s)\n", n)
			return err
		},
	}
}

func (c *cli) pasteCommand() *cobra.Command {
	var (
		after  string
		loop   string
		router string
		branch int
	)
	cmd := &cobra.Command{
		Use:   "paste FLOW",
		Short: "Paste clipboard steps into a flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadFlow(args[0])
			if err != nil {
				return err
			}
			cb, err := c.openClipboard()
			if err != nil {
				return err
			}

			loc := clipboard.AfterLastStep(v)
			switch {
			case loop != "":
				loc = clipboard.Location{
					ParentStep: api.StepName(loop),
					Position:   api.LocationInsideLoop,
				}
			case router != "":
				loc = clipboard.Location{
					ParentStep:  api.StepName(router),
					Position:    api.LocationInsideBranch,
					BranchIndex: branch,
				}
			case after != "":
				loc = clipboard.Location{
					ParentStep: api.StepName(after),
					Position:   api.LocationAfter,
				}
			}

			ctx, cancel := c.withTimeout(cmd)
			defer cancel()
			ops, err := clipboard.Paste(ctx, cb, v, loc)
			if errors.Is(err, clipboard.ErrNothingToPaste) {
				_, err = fmt.Fprintln(c.out, "nothing to paste")
				return err
			}
			if err != nil {
				return err
			}
			res, err := clipboard.ApplyAll(v, ops)
			if err != nil {
				return err
			}
			return c.writeFlow(res, args[0])
		},
	}
	cmd.Flags().StringVar(&after, "after", "", "paste after this step")
	cmd.Flags().StringVar(&loop, "loop", "", "paste inside this loop")
	cmd.Flags().StringVar(&router, "router", "", "paste inside a branch")
	cmd.Flags().IntVar(&branch, "branch", 0, "branch index used with --router")
	cmd.MarkFlagsMutuallyExclusive("after", "loop", "router")
	return cmd
}
