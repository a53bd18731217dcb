// gen-database reads a minimal in-memory star list, runs it through the
// density-limiting generator pipeline, and writes the resulting
// PyramidDatabase (or, with --regional, a RegionalDatabase) out as JSON
// for cmd/identify and internal/api/rest to consume.
//
// Usage:
//
//	go run cmd/gen-database/main.go --stars catalogue.txt --output sky.json
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TomCreusot/star-tracker-go/internal/catalog"
	"github.com/TomCreusot/star-tracker-go/internal/generator"
	"github.com/TomCreusot/star-tracker-go/internal/log"
	"github.com/TomCreusot/star-tracker-go/internal/units"
)

var (
	starsFile        string
	outputFile       string
	fovDeg           float64
	toleranceDeg     float64
	regionSizeDeg    float64
	starsInRegion    int
	regional         bool
	chunkSizeDeg     float64
	debug            bool
)

var genDatabaseCommand = &cobra.Command{
	Use:   "gen-database",
	Short: "Generate a k-vector identification database from a star list",
	RunE: func(cmd *cobra.Command, args []string) error {
		stars, err := readStars(starsFile)
		if err != nil {
			return fmt.Errorf("read stars: %w", err)
		}

		level := "info"
		if debug {
			level = "debug"
		}
		logger := log.New(log.ParseLevel(level), true)

		fov := units.Degrees(fovDeg).ToRadians()
		tolerance := units.Degrees(toleranceDeg).ToRadians()
		regionSize := units.Degrees(regionSizeDeg).ToRadians()

		db, err := generator.Build(stars, fov, tolerance, regionSize, starsInRegion, logger)
		if err != nil {
			return fmt.Errorf("build database: %w", err)
		}

		var payload any = db
		if regional {
			chunkSize := units.Degrees(chunkSizeDeg).ToRadians()
			limited := generator.LimitRegions(generator.LimitDoubleStars(stars, tolerance), regionSize, starsInRegion)
			regionalDB, err := generator.GenDatabaseRegional(limited, fov, tolerance, chunkSize)
			if err != nil {
				return fmt.Errorf("build regional database: %w", err)
			}
			payload = regionalDB
		}

		out, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("write database: %w", err)
		}

		logger.Info().Str("output", outputFile).Int("pairs", len(db.Pairs)).Int("catalogue", len(db.Catalogue)).Msg("database written")
		return nil
	},
}

func init() {
	genDatabaseCommand.Flags().StringVarP(&starsFile, "stars", "s", "", "Path to a star list (one \"ra_deg dec_deg mag\" triple per line)")
	genDatabaseCommand.MarkFlagRequired("stars")

	genDatabaseCommand.Flags().StringVarP(&outputFile, "output", "o", "database.json", "Path to write the generated database JSON")
	genDatabaseCommand.Flags().Float64Var(&fovDeg, "fov", 10, "Sensor field of view in degrees")
	genDatabaseCommand.Flags().Float64Var(&toleranceDeg, "tolerance", 0.001, "K-vector angular distance tolerance in degrees")
	genDatabaseCommand.Flags().Float64Var(&regionSizeDeg, "region-size", 20, "Neighborhood radius in degrees used to cap region density")
	genDatabaseCommand.Flags().IntVar(&starsInRegion, "stars-in-region", 6, "Minimum stars to keep in every region-size neighborhood")
	genDatabaseCommand.Flags().BoolVar(&regional, "regional", false, "Emit a RegionalDatabase (fibonacci-lattice bitfield) instead of a plain PyramidDatabase")
	genDatabaseCommand.Flags().Float64Var(&chunkSizeDeg, "chunk-size", 15, "Regional database chunk radius in degrees, used only with --regional")
	genDatabaseCommand.Flags().BoolVar(&debug, "debug", false, "Verbose logging")
}

func main() {
	if err := genDatabaseCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// readStars parses a minimal "ra_deg dec_deg mag" per-line list. Blank
// lines and lines starting with '#' are ignored; mag defaults to 0 when
// omitted. This is a plain coordinate list, not catalog ingestion.
func readStars(path string) ([]catalog.Star, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var stars []catalog.Star
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed line %q: expected \"ra dec [mag]\"", line)
		}
		ra, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parse ra in %q: %w", line, err)
		}
		dec, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse dec in %q: %w", line, err)
		}
		mag := 0.0
		if len(fields) >= 3 {
			mag, err = strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("parse mag in %q: %w", line, err)
			}
		}
		stars = append(stars, catalog.Star{
			Mag: mag,
			Pos: units.Equatorial{Ra: units.Degrees(ra).ToRadians(), Dec: units.Degrees(dec).ToRadians()},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return stars, nil
}
