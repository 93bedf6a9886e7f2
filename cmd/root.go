package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/embedding"
	"github.com/kozaktomas/face-attendance/internal/persist"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "face-attendance",
	Short: "Identity matching and attendance tracking from face embeddings",
	Long: `Face Attendance keeps a registry of enrolled people and their face
embeddings, matches incoming embeddings against it, and records daily
check-in/check-out times in a CSV ledger.

Camera capture, face detection and embedding extraction live outside this
tool: commands read the extractor's output (JSON arrays of floats) from a
file or stdin.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// newLogger builds the process logger; debug level with --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newService loads configuration and opens the three data documents.
func newService() (*attendance.Service, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger()
	adapter := persist.New(cfg.Data.RegistryPath, cfg.Data.LedgerPath, cfg.Data.AuditPath, logger)

	svc, err := attendance.New(adapter, logger,
		attendance.WithDimension(cfg.Matching.Dim),
		attendance.WithThreshold(cfg.Matching.Threshold),
	)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

// readEmbeddings reads the extraction stage's output: either a JSON array
// of embeddings (one per detected face) or a single flat embedding. Path
// "-" reads stdin.
func readEmbeddings(path string) ([]embedding.Vector, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding file: %w", err)
	}

	var many [][]float64
	if err := json.Unmarshal(data, &many); err == nil {
		out := make([]embedding.Vector, len(many))
		for i, v := range many {
			out[i] = embedding.Vector(v)
		}
		return out, nil
	}

	var one []float64
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("embedding file is not a JSON array of floats: %w", err)
	}
	return []embedding.Vector{embedding.Vector(one)}, nil
}

// resolveSingleFace turns detector output into one query embedding,
// printing the pass-through detector statuses when there is not exactly
// one face.
func resolveSingleFace(vectors []embedding.Vector) (embedding.Vector, bool) {
	vec, status := attendance.ResolveDetection(vectors)
	switch status {
	case attendance.StatusNoFace:
		fmt.Println("No face detected. Please ensure the face is well-lit and visible.")
		return nil, false
	case attendance.StatusMultipleFaces:
		fmt.Println("Multiple faces detected. Please ensure only one face is in the frame.")
		return nil, false
	}
	return vec, true
}
