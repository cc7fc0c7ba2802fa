// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package models

// SiteSettings is a convenience map of all key/value settings.
type SiteSettings map[string]string

// PublicSettingPrefix marks settings exposed through the public content API.
// Everything else stays admin-only.
const PublicSettingPrefix = "public."
