package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TomCreusot/star-tracker-go/internal/api/websocket"
	"github.com/TomCreusot/star-tracker-go/internal/chunk"
	"github.com/TomCreusot/star-tracker-go/internal/constellation"
	"github.com/TomCreusot/star-tracker-go/internal/database"
	"github.com/TomCreusot/star-tracker-go/internal/quest"
	"github.com/TomCreusot/star-tracker-go/internal/specularity"
	"github.com/TomCreusot/star-tracker-go/internal/triangle"
	"github.com/TomCreusot/star-tracker-go/internal/units"
)

// ObservedStar is a single observed direction, in degrees.
type ObservedStar struct {
	Ra  float64 `json:"ra_deg" binding:"required"`
	Dec float64 `json:"dec_deg"`
}

func (o ObservedStar) toEquatorial() units.Equatorial {
	return units.Equatorial{Ra: units.Degrees(o.Ra).ToRadians(), Dec: units.Degrees(o.Dec).ToRadians()}
}

// IdentifyRequest is the body of POST /v1/identify: an observed star
// list plus the id of a previously generated database to match against.
// Omitted tunables take the handler's own defaults: angle_tolerance_deg
// 0.01, pairs_max 10, specularity_min 0.001, match_min 3, match_max 4;
// without max_failures the search is never abandoned.
type IdentifyRequest struct {
	DatabaseID      string         `json:"database_id" binding:"required"`
	Stars           []ObservedStar `json:"stars" binding:"required,min=2"`
	AngleToleranceDeg *float64     `json:"angle_tolerance_deg"`
	PairsMax        *int           `json:"pairs_max"`
	SpecularityMin  *float64       `json:"specularity_min"`
	MatchMin        *int           `json:"match_min"`
	MatchMax        *int           `json:"match_max"`
	MaxFailures     *int           `json:"max_failures"`
}

func firstNonNil(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}

func firstNonNilInt(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}

// MatchResponse is a single observed-star-to-catalog-star correspondence.
type MatchResponse struct {
	ObservedIndex int     `json:"observed_index"`
	CatalogIndex  int     `json:"catalog_index"`
	Weight        float64 `json:"weight"`
}

// QuaternionResponse is a scalar-first attitude quaternion.
type QuaternionResponse struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IdentifyResponse is the result of a pyramid identification attempt.
type IdentifyResponse struct {
	Status     string              `json:"status"`
	Matches    []MatchResponse     `json:"matches,omitempty"`
	Fails      int                 `json:"fails"`
	Quaternion *QuaternionResponse `json:"quaternion,omitempty"`
	Warning    string              `json:"warning,omitempty"`
}

func (s *Server) identify(c *gin.Context) {
	var req IdentifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db, err := s.loadDatabase(c, req.DatabaseID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "database not found"})
		return
	}

	s.hub.Broadcast(websocket.EventIdentificationStarted, gin.H{"database_id": req.DatabaseID, "stars": len(req.Stars)})

	observed := make([]units.Equatorial, len(req.Stars))
	for i, o := range req.Stars {
		observed[i] = o.toEquatorial()
	}

	angleTolerance := units.Degrees(firstNonNil(req.AngleToleranceDeg, 0.01)).ToRadians()
	pairsMax := firstNonNilInt(req.PairsMax, 10)
	specMin := firstNonNil(req.SpecularityMin, 0.001)
	matchMin := firstNonNilInt(req.MatchMin, 3)
	matchMax := firstNonNilInt(req.MatchMax, 4)

	var abandon constellation.AbandonSearch = constellation.Never{}
	if req.MaxFailures != nil {
		abandon = constellation.MaxFailures(*req.MaxFailures)
	}

	ci := chunk.NewNone(db)
	triangleIt := triangle.New(pairsMax)
	spec := specularity.New(specMin)
	matchRange := constellation.MatchRange{Min: matchMin, Max: matchMax}

	result := constellation.Find(observed, ci, triangleIt, spec, abandon, angleTolerance, matchRange)

	resp := IdentifyResponse{Status: result.Status.String(), Fails: result.Fails}
	for _, m := range result.Matches {
		resp.Matches = append(resp.Matches, MatchResponse{ObservedIndex: m.Input, CatalogIndex: m.Output, Weight: m.Weight})
	}

	if result.Status == constellation.Success {
		if q, err := s.solveAttitude(db, observed, result.Matches); err == nil {
			resp.Quaternion = &QuaternionResponse{W: q.W, X: q.X, Y: q.Y, Z: q.Z}
		} else {
			resp.Warning = "identification succeeded but attitude could not be determined: " + err.Error()
		}
		s.logger.Info().Str("database_id", req.DatabaseID).Int("matches", len(result.Matches)).Msg("identification succeeded")
		s.hub.Broadcast(websocket.EventIdentificationSucceeded, resp)
	} else {
		s.logger.Warn().Str("database_id", req.DatabaseID).Str("status", resp.Status).Int("fails", result.Fails).Msg("identification failed")
		s.hub.Broadcast(websocket.EventIdentificationFailed, resp)
	}

	c.JSON(http.StatusOK, resp)
}

// solveAttitude converts a constellation match into observed/reference
// direction pairs and runs QUEST over them.
func (s *Server) solveAttitude(db *database.PyramidDatabase, observed []units.Equatorial, matches []units.Match[int]) (units.Quaternion, error) {
	vectorMatches := make([]units.Match[units.Vector3], 0, len(matches))
	for _, m := range matches {
		if m.Input < 0 || m.Input >= len(observed) {
			continue
		}
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
	return quest.Solve(vectorMatches, quest.DefaultConfig())
}
