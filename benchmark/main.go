// Package main benchmarks the debtlens CLI against a set of repositories.
// Each command runs a number of times without a cache, then with the SQLite
// cache, where the first successful run is cold and the rest are averaged as warm.
// Results are written as CSV for performance analysis and documentation.
//
// Prerequisites:
// - debtlens binary installed and available in PATH
// - GITHUB_TOKEN set when benchmarking GitHub repositories
//
// Usage: go run benchmark/main.go [repo ...]
//
//	repo: GitHub owner/repo or a local checkout path (defaults to a fixed set)
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// BenchmarkResult holds the averaged timings of one command on one repository.
type BenchmarkResult struct {
	Repository  string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Repos       []string
	Commands    [][]string
}

var defaultRepos = []string{"spf13/cobra", "sirupsen/logrus", "go-resty/resty"}

func main() {
	config := BenchmarkConfig{
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 2,
		CacheRuns:   4,
		Repos:       defaultRepos,
		Commands: [][]string{
			{"snapshot"},
			{"history", "--commits", "20"},
		},
	}
	if len(os.Args) > 1 {
		config.Repos = os.Args[1:]
	}

	if _, err := exec.LookPath("debtlens"); err != nil {
		fmt.Println("Prerequisites check failed: debtlens binary not found in PATH")
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	if output, err := exec.Command("debtlens", "cache", "clear").CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	printSummary(results)
}

func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult
	fmt.Printf("Starting benchmark: %d repos, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Repos), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, repo := range config.Repos {
		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, repo, command))
		}
	}
	return results
}

func runBenchmarkSuite(config BenchmarkConfig, repo string, command []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command[0], repo)

	_, noCache := runBenchmark(config, repo, command, "none", config.NoCacheRuns)
	cold, warm := runBenchmark(config, repo, command, "sqlite", config.CacheRuns)

	result := BenchmarkResult{
		Repository:  repo,
		Command:     command[0],
		NoCacheTime: average(noCache),
		ColdTime:    "TIMEOUT",
		WarmTime:    average(warm),
	}
	if cold > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", cold)
	}
	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", result.NoCacheTime, result.ColdTime, result.WarmTime)
	return result
}

// runBenchmark runs one command numRuns times and splits the successful timings
// into the first (cold) and the rest (warm).
func runBenchmark(config BenchmarkConfig, repo string, command []string, cacheBackend string, numRuns int) (float64, []float64) {
	args := append([]string{command[0], repo}, command[1:]...)
	args = append(args, "--output", "json", "--cache-backend", cacheBackend, "--workers", fmt.Sprint(config.Workers))

	var times []float64
	for range numRuns {
		elapsed, err := timeCommand(config.Timeout, args)
		if err != nil {
			fmt.Printf("  run failed: %v\n", err)
			continue
		}
		times = append(times, elapsed)
	}
	if len(times) == 0 {
		return 0, nil
	}
	return times[0], times[1:]
}

func timeCommand(timeout time.Duration, args []string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	output, err := exec.CommandContext(ctx, "debtlens", args...).Output()
	if err != nil {
		return 0, err
	}
	if !json.Valid(output) {
		return 0, errors.New("output is not valid JSON")
	}
	return time.Since(start).Seconds(), nil
}

func average(times []float64) string {
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	filename := fmt.Sprintf("%s/debtlens_benchmark_%s.csv", os.TempDir(), time.Now().Format("20060102_150405"))
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"repo", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{r.Repository, r.Command, r.NoCacheTime, r.ColdTime, r.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"snapshot", "history"} {
		fmt.Printf("%s:\n", command)
		for _, r := range results {
			if r.Command == command {
				fmt.Printf("  %-20s: No-cache: %s, Cold: %s, Warm: %s\n", r.Repository, r.NoCacheTime, r.ColdTime, r.WarmTime)
			}
		}
	}
}
