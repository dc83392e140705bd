package cmd

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/raid/persistence"
)

// resetFlags restores every flag to its default so that commands executed by
// one test do not leak into the next.
func resetFlags(t *testing.T, c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(t, sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	resetFlags(t, rootCmd)
	return out.String(), err
}

func TestEncodeDecodeRebuild(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	datadir := filepath.Join(dir, "data")
	geometry := []string{"--datadir", datadir, "--members", "3", "--chunk-size", "8"}
	withGeometry := func(args ...string) []string {
		return append(args, geometry...)
	}

	payload := make([]byte, 1000)
	rand.New(rand.NewSource(1)).Read(payload)
	input := filepath.Join(dir, "input.bin")
	r.NoError(os.WriteFile(input, payload, 0o600))

	_, err := execute(t, withGeometry("encode", "--in", input)...)
	r.NoError(err)

	output := filepath.Join(dir, "output.bin")
	_, err = execute(t, withGeometry("decode", "--out", output)...)
	r.NoError(err)
	decoded, err := os.ReadFile(output)
	r.NoError(err)
	r.Equal(payload, decoded)

	// Lose a data drive.
	r.NoError(os.Remove(persistence.DrivePath(datadir, 1)))

	_, err = execute(t, withGeometry("decode", "--out", output)...)
	r.ErrorIs(err, os.ErrNotExist)

	degraded := filepath.Join(dir, "degraded.bin")
	_, err = execute(t, withGeometry("decode", "--out", degraded, "--missing", "1")...)
	r.NoError(err)
	decoded, err = os.ReadFile(degraded)
	r.NoError(err)
	r.Equal(payload, decoded)

	_, err = execute(t, withGeometry("rebuild", "--member", "1")...)
	r.NoError(err)
	r.FileExists(persistence.DrivePath(datadir, 1))

	// 1000 bytes over 16 data bytes per stripe.
	out, err := execute(t, withGeometry("verify")...)
	r.NoError(err)
	r.Contains(out, "all 63 stripes are consistent")

	out, err = execute(t, withGeometry("info")...)
	r.NoError(err)
	r.Contains(out, "in 63 stripes")
	r.Contains(out, "parity")
	r.Contains(out, "drive_2.bin")

	_, err = execute(t, withGeometry("reset")...)
	r.NoError(err)

	out, err = execute(t, withGeometry("info")...)
	r.NoError(err)
	r.Contains(out, "payload: none")
}

func TestVerify_Inconsistent(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	datadir := filepath.Join(dir, "data")
	geometry := []string{"--datadir", datadir, "--members", "3", "--chunk-size", "4"}

	input := filepath.Join(dir, "input.bin")
	r.NoError(os.WriteFile(input, bytes.Repeat([]byte{0xAB}, 32), 0o600))
	_, err := execute(t, append([]string{"encode", "--in", input}, geometry...)...)
	r.NoError(err)

	path := persistence.DrivePath(datadir, 0)
	data, err := os.ReadFile(path)
	r.NoError(err)
	data[4] ^= 0xFF
	r.NoError(os.WriteFile(path, data, 0o600))

	out, err := execute(t, append([]string{"verify"}, geometry...)...)
	r.ErrorIs(err, ErrInconsistent)
	r.Contains(out, "1 of 4 stripes are inconsistent")
	r.Contains(out, "stripe 1")
}

func TestConfigFile(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	file := filepath.Join(dir, "config.yaml")
	content := "datadir: " + filepath.Join(dir, "data") + "\nmembers: 7\nbuffered-stripes: 3\n"
	r.NoError(os.WriteFile(file, []byte(content), 0o600))

	out, err := execute(t, "config", "--config", file)
	r.NoError(err)
	r.Contains(out, "Members: (int) 7")
	r.Contains(out, "BufferedStripes: (int) 3")

	// Flags take precedence over the file.
	out, err = execute(t, "config", "--config", file, "--members", "4")
	r.NoError(err)
	r.Contains(out, "Members: (int) 4")
	r.Contains(out, "BufferedStripes: (int) 3")
}

func TestInvalidInput(t *testing.T) {
	r := require.New(t)
	datadir := t.TempDir()

	_, err := execute(t, "config", "--members", "1", "--datadir", datadir)
	r.ErrorContains(err, "invalid `Members`")

	_, err = execute(t, "config", "--log-level", "loud", "--datadir", datadir)
	r.ErrorContains(err, "invalid log level")

	_, err = execute(t, "config", "--config", filepath.Join(datadir, "absent.yaml"))
	r.ErrorContains(err, "failed to read config file")

	_, err = execute(t, "decode", "--datadir", datadir)
	r.Error(err, "--out is required")
}
