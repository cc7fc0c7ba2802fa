// Copyright (c) 2026 Landpress Media SRL <dev@landpress.media>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Media records one uploaded file. StorageKey is the object key in S3 or
// the relative path under the local upload directory.
type Media struct {
	ID          uuid.UUID  `json:"id"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"contentType"`
	SizeBytes   int64      `json:"sizeBytes"`
	StorageKey  string     `json:"storageKey"`
	ThumbKey    *string    `json:"thumbKey,omitempty"`
	URL         string     `json:"url"`
	UploadedBy  *uuid.UUID `json:"uploadedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
