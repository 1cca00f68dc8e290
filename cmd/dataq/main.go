// cmd/dataq/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kushal-thapa/dataq/internal/capture"
	"github.com/kushal-thapa/dataq/internal/config"
	"github.com/kushal-thapa/dataq/internal/device"
	"github.com/kushal-thapa/dataq/internal/indicator"
	"github.com/kushal-thapa/dataq/internal/protocol"
	"github.com/kushal-thapa/dataq/internal/runner"
	"github.com/kushal-thapa/dataq/internal/writer"
)

type options struct {
	configPath string
	channels   []int
	rate       int
	duration   float64
	samples    int
	debug      int
	colors     []string
}

func main() {
	// glog writes to files by default; a CLI wants stderr unless told otherwise
	_ = flag.Set("logtostderr", "true")
	defer glog.Flush()

	if err := newRootCmd().Execute(); err != nil {
		glog.Flush()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "dataq",
		Short: "Acquire calibrated voltages from a DATAQ DI-1100",
		Long: `dataq discovers a DI-1100 on the serial bus, configures its scan list
and sample rate, streams a fixed number of samples, and stops the device.

Channels are sampled in the order given; output columns follow that order.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAcquire(cmd, o)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "YAML config file")
	pf.AddGoFlagSet(flag.CommandLine)

	f := root.Flags()
	f.IntSliceVarP(&o.channels, "channel", "c", nil, "analog channels in scan order (0-3)")
	f.IntVarP(&o.rate, "rate", "r", config.DefaultRate, "sample rate in Hz")
	f.Float64VarP(&o.duration, "time", "t", config.DefaultDuration, "capture duration in seconds")
	f.IntVarP(&o.samples, "nsamp", "n", 0, "number of samples (overrides --time)")
	f.IntVarP(&o.debug, "debug", "D", 0, "1 prints every calibrated row")

	root.AddCommand(newLEDCmd(o), newPortsCmd(o))
	return root
}

func newLEDCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "led",
		Short: "Blink the status LED through a color sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLED(cmd, o)
		},
	}
	cmd.Flags().StringSliceVar(&o.colors, "color", nil, "colors to show (default blue,green,red,white)")
	return cmd
}

func newPortsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial endpoints and their hardware ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, o, false)
			if err != nil {
				return err
			}
			return listPorts(cmd.OutOrStdout(), device.SystemPorts, cfg.Device.Signature)
		},
	}
}

// loadConfig reads the file, applies explicitly set flags, validates,
// then normalizes. Without acquire the acquisition section is ignored.
func loadConfig(cmd *cobra.Command, o *options, acquire bool) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	applyFlags(cmd.Flags(), o, cfg)

	validate := config.ValidateControl
	if acquire {
		validate = config.Validate
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)
	return cfg, nil
}

func applyFlags(fs *pflag.FlagSet, o *options, cfg *config.Config) {
	a := &cfg.Acquisition
	if fs.Changed("channel") {
		a.Channels = append([]int(nil), o.channels...)
	}
	if fs.Changed("rate") {
		a.Rate = o.rate
	}
	if fs.Changed("time") {
		a.Duration = o.duration
		if !fs.Changed("nsamp") {
			a.Samples = 0
		}
	}
	if fs.Changed("nsamp") {
		a.Samples = o.samples
	}
	if fs.Changed("color") {
		cfg.Indicator.Colors = append([]string(nil), o.colors...)
	}
}

// signalContext is canceled on SIGINT or SIGTERM so the capture can
// still run its stop sequence.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case s := <-sig:
			glog.Warningf("stop requested (%v)", s)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sig)
		cancel()
	}
}

func runAcquire(cmd *cobra.Command, o *options) error {
	cfg, err := loadConfig(cmd, o, true)
	if err != nil {
		glog.Errorf("config: %v", err)
		return err
	}

	sw, closeStatus, err := writer.Build(cfg.Status)
	if err != nil {
		glog.Errorf("status endpoint %s: %v", cfg.Status.Endpoint, err)
		return err
	}
	defer closeStatus()

	ctx, stop := signalContext()
	defer stop()

	res, err := runner.Run(ctx, *cfg, runner.Deps{Status: sw})
	if err != nil {
		glog.Errorf("acquisition failed: %v", err)
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, runner.Summary(res))
	if o.debug >= 1 {
		printRows(out, res)
	}
	return nil
}

func printRows(w io.Writer, res *capture.Result) {
	hdr := make([]string, len(res.Channels))
	for i, ch := range res.Channels {
		hdr[i] = fmt.Sprintf("ch%d", ch)
	}
	fmt.Fprintf(w, "t_s\t%s\n", strings.Join(hdr, "\t"))

	dt := 1 / float64(res.Rate.Actual)
	cols := make([]string, len(res.Channels))
	for r, row := range res.Volts {
		for c, v := range row {
			cols[c] = fmt.Sprintf("%.4f", v)
		}
		fmt.Fprintf(w, "%.6f\t%s\n", float64(r)*dt, strings.Join(cols, "\t"))
	}
}

func runLED(cmd *cobra.Command, o *options) error {
	cfg, err := loadConfig(cmd, o, false)
	if err != nil {
		return err
	}

	colors, err := indicator.ParseColors(cfg.Indicator.Colors)
	if err != nil {
		return err
	}

	h, err := device.Discover(device.SystemPorts, cfg.Device.Signature)
	if err != nil {
		glog.Errorf("discover: %v", err)
		return err
	}

	port, err := indicator.Open(h.Port, cfg.Indicator.Baud, time.Duration(cfg.Indicator.TimeoutMs)*time.Millisecond)
	if err != nil {
		glog.Errorf("%v", err)
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	s := protocol.NewSession(port, runner.Options(cfg.Device))
	err = indicator.Blink(ctx, s, colors, time.Duration(cfg.Indicator.HoldMs)*time.Millisecond)
	if cerr := s.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func listPorts(w io.Writer, enum device.Enumerator, signature string) error {
	list, err := enum()
	if err != nil {
		return err
	}
	for _, p := range list {
		id := device.HardwareID(p)
		mark := " "
		if strings.Contains(id, signature) {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s\t%s\n", mark, p.Name, id)
	}
	return nil
}
