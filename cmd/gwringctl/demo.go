package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gnuweeb/gwring"
)

var (
	opStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

func newDemoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Submit demo workloads against an in-process ring",
	}

	cmd.AddCommand(newDemoNopCommand())
	cmd.AddCommand(newDemoSleepCommand())
	cmd.AddCommand(newDemoHTTPCommand())

	return cmd
}

func newDemoNopCommand() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "nop",
		Short: "Submit n no-op entries and print their completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ring, err := gwring.Init(uint32(n))
			if err != nil {
				return err
			}
			defer ring.Destroy()

			for i := 0; i < n; i++ {
				sqe := ring.GetSQE()
				if sqe == nil {
					return gwring.ErrSQRingFull
				}
				sqe.PrepNop(uint64(i))
			}
			if _, err := ring.Submit(); err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				cqe, err := ring.WaitCQE()
				if err != nil {
					return err
				}
				ring.CQAdvance(1)
				printCQE("nop", cqe)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 1, "number of no-ops to submit")
	return cmd
}

func newDemoSleepCommand() *cobra.Command {
	var n int
	var ms int
	cmd := &cobra.Command{
		Use:   "sleep",
		Short: "Submit n sleep operations and print their completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ring, err := gwring.Init(uint32(n))
			if err != nil {
				return err
			}
			defer ring.Destroy()

			for i := 0; i < n; i++ {
				sqe := ring.GetSQE()
				if sqe == nil {
					return gwring.ErrSQRingFull
				}
				sqe.PrepSleep(uint64(ms), int64(i), uint64(i))
			}
			if _, err := ring.Submit(); err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				cqe, err := ring.WaitCQE()
				if err != nil {
					return err
				}
				ring.CQAdvance(1)
				printCQE("sleep", cqe)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 1, "number of sleeps to submit")
	cmd.Flags().IntVar(&ms, "ms", 50, "milliseconds each sleep takes")
	return cmd
}

func newDemoHTTPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http [url]",
		Short: "Submit an HTTP GET and print its status completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ring, err := gwring.Init(1)
			if err != nil {
				return err
			}
			defer ring.Destroy()

			sqe := ring.GetSQE()
			if sqe == nil {
				return gwring.ErrSQRingFull
			}
			sqe.PrepHTTPGet(args[0], 0)

			cqe, err := ring.SubmitAndWait(1)
			if err != nil {
				return err
			}
			ring.CQAdvance(1)
			printCQE("http", cqe)
			return nil
		},
	}
	return cmd
}

func printCQE(op string, cqe gwring.CQE) {
	label := opStyle.Render(op)
	if cqe.Res < 0 {
		fmt.Printf("%s user_data=%d res=%s\n", label, cqe.UserData, errStyle.Render(fmt.Sprintf("%d", cqe.Res)))
		return
	}
	fmt.Printf("%s user_data=%d res=%s\n", label, cqe.UserData, okStyle.Render(fmt.Sprintf("%d", cqe.Res)))
}
