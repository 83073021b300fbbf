package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

// Locale is a row of the locales table.
type Locale struct {
	bun.BaseModel `bun:"table:locales,alias:l"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Code      string    `bun:"code,notnull,unique" json:"code"`
	IsDefault bool      `bun:"is_default,notnull,default:false" json:"is_default"`
	Position  int       `bun:"position,notnull,default:0" json:"position"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// SiteSettings is the single row of the site_settings table.
type SiteSettings struct {
	bun.BaseModel `bun:"table:site_settings"`

	ID          int       `bun:",pk"`
	Hostname    string    `bun:"hostname"`
	Title       string    `bun:"title"`
	Description string    `bun:"description"`
	Keywords    string    `bun:"keywords"`
	Author      string    `bun:"author"`
	FaviconKey  string    `bun:"favicon_key"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Page is one locale variant of a page. Locale is empty for the canonical variant.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID               uuid.UUID              `bun:",pk,type:uuid" json:"id"`
	Key              string                 `bun:"page_key,notnull" json:"key"`
	Locale           string                 `bun:"locale,notnull" json:"locale"`
	Permalink        string                 `bun:"permalink,notnull" json:"permalink"`
	Title            string                 `bun:"title" json:"title"`
	Description      string                 `bun:"description" json:"description,omitempty"`
	Keywords         string                 `bun:"keywords" json:"keywords,omitempty"`
	JSONLD           string                 `bun:"json_ld" json:"json_ld,omitempty"`
	ShareTitle       string                 `bun:"share_title" json:"share_title,omitempty"`
	ShareDescription string                 `bun:"share_description" json:"share_description,omitempty"`
	ShareImageKey    string                 `bun:"share_image_key" json:"share_image_key,omitempty"`
	Format           string                 `bun:"format,notnull" json:"format"`
	Body             string                 `bun:"body" json:"body,omitempty"`
	Styles           []interfaces.StyleRule `bun:"styles,type:jsonb" json:"styles,omitempty"`
	Position         int                    `bun:"position,notnull,default:0" json:"position"`
	UpdatedAt        time.Time              `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Media is a row of the media table.
type Media struct {
	bun.BaseModel `bun:"table:media,alias:m"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Key         string    `bun:"media_key,notnull,unique" json:"key"`
	Permalink   string    `bun:"permalink,notnull" json:"permalink"`
	ContentType string    `bun:"content_type" json:"content_type,omitempty"`
}

func (p *Page) record() interfaces.PageRecord {
	record := interfaces.PageRecord{
		Key:         p.Key,
		Permalink:   p.Permalink,
		Title:       p.Title,
		Description: p.Description,
		Keywords:    p.Keywords,
		JSONLD:      p.JSONLD,
	}
	if p.ShareTitle != "" || p.ShareDescription != "" || p.ShareImageKey != "" {
		record.SocialShare = &interfaces.SocialShare{
			Title:          p.ShareTitle,
			Description:    p.ShareDescription,
			ImageSourceKey: p.ShareImageKey,
		}
	}
	return record
}

func (p *Page) content() *interfaces.PageContent {
	format := interfaces.ContentFormat(p.Format)
	if format == "" {
		format = interfaces.ContentFormatHTML
	}
	return &interfaces.PageContent{
		Format: format,
		Body:   p.Body,
		Styles: append([]interfaces.StyleRule(nil), p.Styles...),
	}
}

func (s *SiteSettings) settings() interfaces.SiteSettings {
	return interfaces.SiteSettings{
		Hostname:         s.Hostname,
		Title:            s.Title,
		Description:      s.Description,
		Keywords:         s.Keywords,
		Author:           s.Author,
		FaviconSourceKey: s.FaviconKey,
	}
}
