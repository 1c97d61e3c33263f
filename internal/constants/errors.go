package constants

import "errors"

// Configuration errors.
var (
	ErrItemsURLRequired   = errors.New("Directus items URL is required (DIRECTUS_API_URL)")
	ErrFilesURLRequired   = errors.New("Directus files URL is required (DIRECTUS_FILES_URL)")
	ErrTokenRequired      = errors.New("Directus access token is required for expanded export (DIRECTUS_TOKEN)")
	ErrNoExportTargets    = errors.New("at least one export target is required")
	ErrInvalidOutputFlag  = errors.New("invalid output format, expected table, json or yaml")
	ErrPurgeZoneRequired  = errors.New("EdgeOne zone ID is required (TEO_SITE_ID)")
	ErrPurgeCredentials   = errors.New("Tencent Cloud secret ID and key are required (COS_SECRET_ID, COS_SECRET_KEY)")
	ErrPurgeTargetsNeeded = errors.New("at least one purge target is required")
)

// Run errors.
var (
	ErrFilesUnavailable    = errors.New("could not fetch file data, aborting")
	ErrWebstackUnavailable = errors.New("could not fetch webstack data, aborting")
)
