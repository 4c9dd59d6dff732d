package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/drgolem/ashowinfo/internal/config"
	"github.com/drgolem/ashowinfo/internal/pipeline"
	"github.com/drgolem/ashowinfo/pkg/audioframe"
	"github.com/drgolem/ashowinfo/pkg/chlayout"
	"github.com/drgolem/ashowinfo/pkg/samplefmt"
	"github.com/drgolem/ashowinfo/pkg/showinfo"

	"github.com/spf13/cobra"
)

func newTestInspectCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "inspect"}
	addInspectFlags(c)
	if err := c.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v): %v", args, err)
	}
	return c
}

func TestLoadInspectConfigDefaults(t *testing.T) {
	cfg, err := loadInspectConfig(newTestInspectCmd(t))
	if err != nil {
		t.Fatalf("loadInspectConfig: %v", err)
	}
	if *cfg != config.Default() {
		t.Errorf("config without flags = %+v, want defaults", *cfg)
	}
}

func TestLoadInspectConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ashowinfo.toml")
	src := "[inspect]\nsamples_per_frame = 128\nplanar = true\n\n[buffer]\ncapacity = 4\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadInspectConfig(newTestInspectCmd(t,
		"--config", path,
		"--samples", "512",
		"--out", "x.wav",
		"-v",
	))
	if err != nil {
		t.Fatalf("loadInspectConfig: %v", err)
	}

	if cfg.Inspect.SamplesPerFrame != 512 {
		t.Errorf("samples_per_frame = %d, want flag value 512", cfg.Inspect.SamplesPerFrame)
	}
	if !cfg.Inspect.Planar || cfg.Buffer.Capacity != 4 {
		t.Errorf("file values lost: planar=%v capacity=%d", cfg.Inspect.Planar, cfg.Buffer.Capacity)
	}
	if cfg.Output.Kind != "wav" || cfg.Output.Path != "x.wav" {
		t.Errorf("output = %+v, want wav to x.wav", cfg.Output)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadInspectConfigRejectsInvalidFlags(t *testing.T) {
	if _, err := loadInspectConfig(newTestInspectCmd(t, "--layout", "nine.two")); err == nil {
		t.Error("expected error for unknown layout")
	}
	if _, err := loadInspectConfig(newTestInspectCmd(t, "--report", "xml")); err == nil {
		t.Error("expected error for unknown report destination")
	}
}

func TestNewReportSinkToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	var stdout bytes.Buffer

	sink, closeSink, err := newReportSink(config.Inspect{Report: config.ReportText, ReportFile: path}, &stdout)
	if err != nil {
		t.Fatalf("newReportSink: %v", err)
	}

	r := &showinfo.Report{
		N: 0, PTS: 0, SampleFormat: "s16", Layout: "mono", SampleRate: 8000,
		NbSamples: 1, Checksum: 0x00010001, PlaneChecksums: []uint32{0x00010001},
	}
	if err := sink.Emit(r); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	closeSink()
	closeSink()

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != r.String() {
		t.Errorf("report file = %q, want %q", got, r.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout received %q, want nothing", stdout.String())
	}
}

func TestNewReportSinkBoth(t *testing.T) {
	var stdout bytes.Buffer
	sink, closeSink, err := newReportSink(config.Inspect{Report: config.ReportBoth}, &stdout)
	if err != nil {
		t.Fatalf("newReportSink: %v", err)
	}
	defer closeSink()

	if _, ok := sink.(showinfo.MultiSink); !ok {
		t.Fatalf("sink is %T, want showinfo.MultiSink", sink)
	}
}

func TestLayoutRows(t *testing.T) {
	rows := layoutRows()
	if len(rows) != len(chlayout.Named()) {
		t.Fatalf("got %d rows, want %d", len(rows), len(chlayout.Named()))
	}

	found := false
	for _, row := range rows {
		if row[0] == "5.1" {
			found = true
			if row[1] != "6" || row[3] != "FL+FR+FC+LFE+SL+SR" {
				t.Errorf("5.1 row = %v", row)
			}
		}
	}
	if !found {
		t.Error("5.1 missing from layout table")
	}

	if n := len(sampleFormatRows()); n != len(samplefmt.All()) {
		t.Errorf("sample format rows = %d, want %d", n, len(samplefmt.All()))
	}
}

func TestRenderSummary(t *testing.T) {
	stats := pipeline.Stats{
		Frames:  4,
		Samples: 1000,
		LastFormat: audioframe.FrameFormat{
			SampleFormat: samplefmt.S16,
			Layout:       chlayout.Stereo,
			SampleRate:   48000,
		},
	}
	out := renderSummary("tone:440Hz", stats, 0)
	for _, want := range []string{"Summary", "tone:440Hz", "1000", "s16:stereo:48000Hz"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
