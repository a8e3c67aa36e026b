package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/shpdiag/internal/config"
	"github.com/bimmerbailey/shpdiag/internal/follow"
)

var followCmd = &cobra.Command{
	Use:   "follow [flags] <capture>",
	Short: "Decode a capture while it is being recorded",
	Long: `Watch a capture file and print entries as they are reconstructed,
similar to 'tail -f'. An entry is printed once a later line proves it
complete; the last entry is printed when following stops.

Examples:
  shpdiag follow capture.hex
  shpdiag follow -n 20 --no-follow capture.hex
  shpdiag follow --follow-rotate capture.hex`,
	Args: cobra.ExactArgs(1),
	RunE: runFollow,
}

func init() {
	followCmd.Flags().IntP("lines", "n", 10, "number of complete existing entries to show, 0 for all (the still-open last entry is printed too)")
	followCmd.Flags().Bool("no-follow", false, "print existing entries and exit (don't follow)")
	followCmd.Flags().Bool("follow-rotate", false, "follow through capture rotations (continue when file is renamed/removed)")
	followCmd.Flags().Bool("no-color", false, "disable colored output")
	followCmd.Flags().Bool("redact", false, "mask addresses and credentials in entries")

	rootCmd.AddCommand(followCmd)
}

func runFollow(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	lines, _ := cmd.Flags().GetInt("lines")
	noFollow, _ := cmd.Flags().GetBool("no-follow")
	followRotate, _ := cmd.Flags().GetBool("follow-rotate")

	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if redactFlag, _ := cmd.Flags().GetBool("redact"); redactFlag {
		cfg.Redaction.Enabled = true
	}
	dec, err := newDecoder(cfg)
	if err != nil {
		return err
	}
	wr, err := newWriter(cmd, cfg)
	if err != nil {
		return err
	}

	follower := follow.New(follow.Options{
		FilePath:     filePath,
		Lines:        lines,
		Follow:       !noFollow,
		FollowRotate: followRotate,
		Decoder:      dec,
		OutputFunc:   func(e config.Entry) error { return wr.WriteEntry(e) },
		Logger:       logger,
	})

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- follower.Run(ctx)
	}()

	select {
	case <-sigChan:
		cancel()
		err = <-errChan
	case err = <-errChan:
	}

	stats := follower.Stats()
	logger.WithField("raw_lines", stats.RawLines).
		WithField("hex_failures", stats.HexFailures).
		Debug("follow stopped")

	if errors.Is(err, follow.ErrRotated) {
		logger.WithField("path", filePath).Info("capture rotated, stopping")
		return nil
	}
	return err
}
