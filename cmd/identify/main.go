// identify reads an observed star list and a pre-generated database file,
// runs pyramid identification, and prints the resolved match plus the
// QUEST attitude quaternion.
//
// Usage:
//
//	go run cmd/identify/main.go --stars observed.txt --database sky.json
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TomCreusot/star-tracker-go/internal/chunk"
	"github.com/TomCreusot/star-tracker-go/internal/constellation"
	"github.com/TomCreusot/star-tracker-go/internal/database"
	"github.com/TomCreusot/star-tracker-go/internal/quest"
	"github.com/TomCreusot/star-tracker-go/internal/specularity"
	"github.com/TomCreusot/star-tracker-go/internal/triangle"
	"github.com/TomCreusot/star-tracker-go/internal/units"
)

var (
	starsFile       string
	databaseFile    string
	angleToleranceDeg float64
	pairsMax        int
	specularityMin  float64
	matchMin        int
	matchMax        int
)

var identifyCommand = &cobra.Command{
	Use:   "identify",
	Short: "Identify an observed star pattern against a generated database",
	RunE: func(cmd *cobra.Command, args []string) error {
		observed, err := readObservedStars(starsFile)
		if err != nil {
			return fmt.Errorf("read observed stars: %w", err)
		}

		db, err := readDatabase(databaseFile)
		if err != nil {
			return fmt.Errorf("read database: %w", err)
		}

		ci := chunk.NewNone(db)
		triangleIt := triangle.New(pairsMax)
		spec := specularity.New(specularityMin)
		tolerance := units.Degrees(angleToleranceDeg).ToRadians()
		matchRange := constellation.MatchRange{Min: matchMin, Max: matchMax}

		result := constellation.Find(observed, ci, triangleIt, spec, constellation.Never{}, tolerance, matchRange)

		fmt.Printf("status: %s (fails=%d)\n", result.Status, result.Fails)
		if result.Status != constellation.Success {
			return nil
		}

		for _, m := range result.Matches {
			fmt.Printf("  observed[%d] -> catalogue[%d] (weight=%.6g)\n", m.Input, m.Output, m.Weight)
		}

		vectorMatches := make([]units.Match[units.Vector3], 0, len(result.Matches))
		for _, m := range result.Matches {
			ref, err := database.FindStar(db, m.Output)
			if err != nil {
				continue
			}
			vectorMatches = append(vectorMatches, units.Match[units.Vector3]{
				Input:  observed[m.Input].ToVector3(),
				Output: ref.ToVector3(),
				Weight: m.Weight,
			})
		}

		q, err := quest.Solve(vectorMatches, quest.DefaultConfig())
		if err != nil {
			return fmt.Errorf("quest: %w", err)
		}
		fmt.Printf("quaternion: w=%.6f x=%.6f y=%.6f z=%.6f\n", q.W, q.X, q.Y, q.Z)
		return nil
	},
}

func init() {
	identifyCommand.Flags().StringVarP(&starsFile, "stars", "s", "", "Path to an observed star list (one \"ra_deg dec_deg\" pair per line)")
	identifyCommand.MarkFlagRequired("stars")

	identifyCommand.Flags().StringVarP(&databaseFile, "database", "d", "", "Path to a database JSON file produced by gen-database")
	identifyCommand.MarkFlagRequired("database")

	identifyCommand.Flags().Float64Var(&angleToleranceDeg, "angle-tolerance", 0.01, "Angular distance tolerance in degrees")
	identifyCommand.Flags().IntVar(&pairsMax, "pairs-max", 10, "Maximum candidate database pairs retained per triangle side")
	identifyCommand.Flags().Float64Var(&specularityMin, "specularity-min", 0.001, "Minimum triangle area below which chirality is ignored")
	identifyCommand.Flags().IntVar(&matchMin, "match-min", 3, "Minimum accepted match count (3 or 4)")
	identifyCommand.Flags().IntVar(&matchMax, "match-max", 4, "Maximum accepted match count (3 or 4)")
}

func main() {
	if err := identifyCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// readObservedStars parses a minimal "ra_deg dec_deg" per-line list. Blank
// lines and lines starting with '#' are ignored. This is a plain
// coordinate list, not catalog ingestion.
func readObservedStars(path string) ([]units.Equatorial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var stars []units.Equatorial
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed line %q: expected \"ra dec\"", line)
		}
		ra, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parse ra in %q: %w", line, err)
		}
		dec, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse dec in %q: %w", line, err)
		}
		stars = append(stars, units.Equatorial{Ra: units.Degrees(ra).ToRadians(), Dec: units.Degrees(dec).ToRadians()})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return stars, nil
}

func readDatabase(path string) (*database.PyramidDatabase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var db database.PyramidDatabase
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, err
	}
	return &db, nil
}
