package natsadapter

import (
	"fmt"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// Subjects used by the corridor services.
const (
	SubjectCorridorPrefix = "migration.corridor."
	SubjectOverlapPrefix  = "migration.overlap."
	SubjectRunCompleted   = "migration.run.completed"
	SubjectRunRequest     = "migration.run.request"
	SubjectBroadcast      = "migration.updates.broadcast"
)

// CorridorEvent is published once per corridor produced by a run.
type CorridorEvent struct {
	RunID    string          `json:"run_id"`
	Corridor domain.Corridor `json:"corridor"`
}

// OverlapEvent is published once per overlap region produced by a run.
type OverlapEvent struct {
	RunID   string               `json:"run_id"`
	Overlap domain.OverlapRegion `json:"overlap"`
}

// CorridorSubject returns the subject for a group's corridor.
func CorridorSubject(groupID int64) string {
	return fmt.Sprintf("%s%d", SubjectCorridorPrefix, groupID)
}

// OverlapSubject returns the subject for the overlap of groups a and b.
func OverlapSubject(a, b int64) string {
	return fmt.Sprintf("%s%d.%d", SubjectOverlapPrefix, a, b)
}
