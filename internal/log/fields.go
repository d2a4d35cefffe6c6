// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID     = "session_id"
	FieldCorrelationID = "correlation_id"
	FieldRequestID     = "request_id"
	FieldCameraID      = "camera_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Catalog fields
	FieldGeneration = "generation"
	FieldFeedSource = "feed_source"
	FieldRegion     = "region"
	FieldCameras    = "cameras"

	// Playback fields
	FieldMode     = "mode"
	FieldOldState = "old_state"
	FieldNewState = "new_state"
	FieldSalt     = "salt"

	// Path / URL fields
	FieldPath    = "path"
	FieldBaseURL = "base_url"
)
