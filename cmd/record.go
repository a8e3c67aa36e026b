package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/shpdiag/internal/record"
)

var recordCmd = &cobra.Command{
	Use:   "record [flags] <host>",
	Short: "Record a processor's diagnostics feed to a capture file",
	Long: `Connect to a control processor's diagnostics websocket, subscribe to the
message log and system variables, and write every frame as one hex line.
Recording stops on Ctrl-C or when the processor closes the connection.

Examples:
  shpdiag record 192.168.1.50
  shpdiag record --out site.hex 192.168.1.50
  shpdiag follow site.hex   # in a second terminal`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringP("out", "o", "", "capture file to write (default: capture-<time>-<session>.hex in record.out_dir)")
	recordCmd.Flags().Int("port", record.DefaultPort, "diagnostics websocket port")

	_ = viper.BindPFlag("record.port", recordCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	host := args[0]
	outPath, _ := cmd.Flags().GetString("out")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	recorder := record.New(record.Options{
		Host:   host,
		Port:   cfg.Record.Port,
		Logger: logger,
	})

	if outPath == "" {
		dir := cfg.Record.OutDir
		if dir == "" {
			dir = "."
		}
		outPath = filepath.Join(dir, recorder.FileName(time.Now()))
	}

	f, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create capture %s: %w", outPath, err)
	}
	defer f.Close()

	fmt.Fprintf(cmd.ErrOrStderr(), "Recording %s to %s (session %s)\n", recorder.URL(), outPath, recorder.Session())

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	frames, err := recorder.Record(ctx, f)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Recorded %d frames\n", frames)
	return nil
}
