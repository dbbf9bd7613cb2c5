package photosite

import "embed"

// embeddedAssets holds the word lists used to propose display names for new
// users.
//
//go:embed embedded/*
var embeddedAssets embed.FS
