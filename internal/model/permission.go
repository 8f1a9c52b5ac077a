package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionExamsRead allows viewing exam definitions, submissions and the live monitor.
	PermissionExamsRead Permission = "exams:read"

	// PermissionExamsPublish allows refreshing the cached exam paper after edits.
	PermissionExamsPublish Permission = "exams:publish"

	// PermissionBlocksRead allows listing blocked candidates.
	PermissionBlocksRead Permission = "exam_blocks:read"

	// PermissionBlocksWrite allows lifting a candidate block.
	PermissionBlocksWrite Permission = "exam_blocks:write"
)
