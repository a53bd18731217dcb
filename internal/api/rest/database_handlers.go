package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TomCreusot/star-tracker-go/internal/api/websocket"
	"github.com/TomCreusot/star-tracker-go/internal/catalog"
	"github.com/TomCreusot/star-tracker-go/internal/database"
	"github.com/TomCreusot/star-tracker-go/internal/generator"
	"github.com/TomCreusot/star-tracker-go/internal/units"
)

// StarEntry is a single catalog star as carried over the wire: a
// direction in degrees plus a visual magnitude.
type StarEntry struct {
	Ra  float64 `json:"ra_deg" binding:"required"`
	Dec float64 `json:"dec_deg"`
	Mag float64 `json:"mag"`
}

func (e StarEntry) toCatalogStar() catalog.Star {
	return catalog.Star{
		Mag: e.Mag,
		Pos: units.Equatorial{
			Ra:  units.Degrees(e.Ra).ToRadians(),
			Dec: units.Degrees(e.Dec).ToRadians(),
		},
	}
}

// GenerateDatabaseRequest is the body of POST /v1/databases.
type GenerateDatabaseRequest struct {
	Stars         []StarEntry `json:"stars" binding:"required,min=3"`
	FOVDeg        float64     `json:"fov_deg" binding:"required"`
	ToleranceDeg  float64     `json:"tolerance_deg" binding:"required"`
}

// DatabaseMeta describes a generated database without its bulk arrays,
// the shape GET /v1/databases/:id returns.
type DatabaseMeta struct {
	ID       string  `json:"id"`
	NumStars int     `json:"num_stars"`
	NumPairs int     `json:"num_pairs"`
	FOVDeg   float64 `json:"fov_deg"`
}

func (s *Server) newDatabaseID() string {
	return fmt.Sprintf("db-%d", s.nextID.Add(1))
}

func databaseKey(id string) string { return "database:" + id }
func metaKey(id string) string     { return "database-meta:" + id }

func (s *Server) generateDatabase(c *gin.Context) {
	var req GenerateDatabaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := s.newDatabaseID()
	s.hub.Broadcast(websocket.EventDatabaseGenerationStarted, gin.H{"id": id, "stars": len(req.Stars)})

	stars := make([]catalog.Star, len(req.Stars))
	for i, e := range req.Stars {
		stars[i] = e.toCatalogStar()
	}

	fov := units.Degrees(req.FOVDeg).ToRadians()
	tolerance := units.Degrees(req.ToleranceDeg).ToRadians()

	db, err := generator.GenDatabase(stars, fov, tolerance)
	if err != nil {
		s.logger.Error().Err(err).Str("database_id", id).Msg("database generation failed")
		s.hub.Broadcast(websocket.EventDatabaseGenerationCompleted, gin.H{"id": id, "error": err.Error()})
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	meta := DatabaseMeta{ID: id, NumStars: len(db.Catalogue), NumPairs: len(db.Pairs), FOVDeg: req.FOVDeg}

	ctx := c.Request.Context()
	if err := s.store.SetJSON(ctx, databaseKey(id), &db); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SetJSON(ctx, metaKey(id), meta); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.logger.Info().Str("database_id", id).Int("stars", meta.NumStars).Int("pairs", meta.NumPairs).Msg("database generated")
	s.hub.Broadcast(websocket.EventDatabaseGenerationCompleted, meta)

	c.JSON(http.StatusCreated, meta)
}

func (s *Server) getDatabase(c *gin.Context) {
	id := c.Param("id")

	var meta DatabaseMeta
	if err := s.store.GetJSON(c.Request.Context(), metaKey(id), &meta); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "database not found"})
		return
	}

	c.JSON(http.StatusOK, meta)
}

// loadDatabase reconstructs the PyramidDatabase cached under id.
func (s *Server) loadDatabase(c *gin.Context, id string) (*database.PyramidDatabase, error) {
	var db database.PyramidDatabase
	if err := s.store.GetJSON(c.Request.Context(), databaseKey(id), &db); err != nil {
		return nil, err
	}
	return &db, nil
}
