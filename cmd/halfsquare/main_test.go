package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSquare(t *testing.T, dir, name string, size int, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	a := writeSquare(t, dir, "a.png", 150, color.NRGBA{R: 255, A: 255})
	b := writeSquare(t, dir, "b.png", 150, color.NRGBA{B: 255, A: 255})
	small := writeSquare(t, dir, "small.png", 100, color.NRGBA{G: 255, A: 255})
	out := filepath.Join(dir, "out.png")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"help", []string{"--help"}, exitOK},
		{"short help", []string{"-h"}, exitOK},
		{"no inputs", nil, exitUsage},
		{"three inputs", []string{a, b, a}, exitUsage},
		{"unknown flag", []string{"--nope", a}, exitUsage},
		{"bad size value", []string{"-s", "big", a}, exitUsage},
		{"zero size", []string{"-s", "0", a}, exitUsage},
		{"negative timeout", []string{"-t", "-1s", a}, exitUsage},
		{"undersized input", []string{"-o", out, small, b}, exitError},
		{"dual", []string{"-o", out, a, b}, exitOK},
		{"single", []string{"--output", out, "--size", "64", a}, exitOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := run(context.Background(), tt.args, &stdout, &stderr); got != tt.want {
				t.Errorf("exit code = %d, want %d\nstdout: %s\nstderr: %s", got, tt.want, stdout.String(), stderr.String())
			}
		})
	}
}

func TestRun_UsageOnError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), nil, &stdout, &stderr); code != exitUsage {
		t.Fatalf("exit code = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Errorf("usage not printed:\n%s", stderr.String())
	}
}

func TestRun_WritesOutput(t *testing.T) {
	dir := t.TempDir()
	a := writeSquare(t, dir, "a.png", 145, color.NRGBA{R: 255, A: 255})
	b := writeSquare(t, dir, "b.png", 145, color.NRGBA{B: 255, A: 255})
	out := filepath.Join(dir, "block.png")

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{a, b, "-o", out}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code = %d\nstderr: %s", code, stderr.String())
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 145 || cfg.Height != 145 {
		t.Errorf("output is %dx%d, want 145x145", cfg.Width, cfg.Height)
	}
	if !strings.Contains(stdout.String(), "Saved as: block.png") {
		t.Errorf("stdout = %q", stdout.String())
	}
	for _, stage := range []string{"Generating mask", "Cropping", "Masking", "Compositing", "Done in"} {
		if !strings.Contains(stderr.String(), stage) {
			t.Errorf("stage %q missing from progress output:\n%s", stage, stderr.String())
		}
	}
}

func TestRun_Debug(t *testing.T) {
	dir := t.TempDir()
	a := writeSquare(t, dir, "a.png", 60, color.NRGBA{R: 255, A: 255})
	workdir := filepath.Join(dir, "tmp")
	out := filepath.Join(dir, "out.png")

	args := []string{a, "-d", "-w", workdir, "-s", "50", "-o", out}
	for i := 0; i < 2; i++ {
		var stdout, stderr bytes.Buffer
		if code := run(context.Background(), args, &stdout, &stderr); code != exitOK {
			t.Fatalf("run %d exit code = %d\nstderr: %s", i, code, stderr.String())
		}
		if !strings.Contains(stderr.String(), "Debug enabled") {
			t.Errorf("run %d: debug warning missing:\n%s", i, stderr.String())
		}
		if i == 1 && !strings.Contains(stderr.String(), "Found mask") {
			t.Errorf("second run did not reuse the mask:\n%s", stderr.String())
		}
	}
	for _, name := range []string{"mask-50.png", "buffer-50.png"} {
		if _, err := os.Stat(filepath.Join(workdir, name)); err != nil {
			t.Errorf("%s not cached: %v", name, err)
		}
	}
}

func TestRun_HelpMentionsDebugLeftovers(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"--help"}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stdout.String(), "pile up in the workspace") {
		t.Errorf("--debug help does not mention the kept scratch files:\n%s", stdout.String())
	}
}
