// Package catchexport dumps every note of an account, with its tags,
// comments and optionally its image attachments, to a YAML or JSON file.
package catchexport

import (
	"context"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	catchapi "github.com/catchnotes/catchapi.go"
	"github.com/catchnotes/catchapi.go/pkg/logger"
	"github.com/catchnotes/catchapi.go/pkg/models"
)

// Export is the document written by Do.
type Export struct {
	ExportedAt time.Time `yaml:"exported_at" json:"exported_at"`
	Endpoint   string    `yaml:"endpoint" json:"endpoint"`
	User       User      `yaml:"user" json:"user"`
	Count      int       `yaml:"count" json:"count"`
	Notes      []Note    `yaml:"notes" json:"notes"`
	Tags       []Tag     `yaml:"tags" json:"tags"`
}

type User struct {
	ID        string    `yaml:"id" json:"id"`
	UserName  string    `yaml:"user_name" json:"user_name"`
	Email     string    `yaml:"email,omitempty" json:"email,omitempty"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

type Note struct {
	ID         string           `yaml:"id" json:"id"`
	CreatedAt  time.Time        `yaml:"created_at" json:"created_at"`
	ModifiedAt time.Time        `yaml:"modified_at" json:"modified_at"`
	ReminderAt *time.Time       `yaml:"reminder_at,omitempty" json:"reminder_at,omitempty"`
	Text       string           `yaml:"text" json:"text"`
	Source     string           `yaml:"source,omitempty" json:"source,omitempty"`
	SourceURL  string           `yaml:"source_url,omitempty" json:"source_url,omitempty"`
	Tags       []string         `yaml:"tags,omitempty" json:"tags,omitempty"`
	Location   *models.Location `yaml:"location,omitempty" json:"location,omitempty"`
	Media      []Media          `yaml:"media,omitempty" json:"media,omitempty"`
	Comments   []Comment        `yaml:"comments,omitempty" json:"comments,omitempty"`
}

type Media struct {
	ID     string `yaml:"id" json:"id"`
	Type   string `yaml:"type" json:"type"`
	MD5    string `yaml:"md5,omitempty" json:"md5,omitempty"`
	Width  int    `yaml:"width,omitempty" json:"width,omitempty"`
	Height int    `yaml:"height,omitempty" json:"height,omitempty"`
	Src    string `yaml:"src,omitempty" json:"src,omitempty"`
	// File is the downloaded copy, relative to the media directory.
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

type Comment struct {
	ID        string    `yaml:"id" json:"id"`
	Author    string    `yaml:"author,omitempty" json:"author,omitempty"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
	Text      string    `yaml:"text" json:"text"`
}

type Tag struct {
	Name  string `yaml:"name" json:"name"`
	Count int    `yaml:"count" json:"count"`
}

// Exporter collects the notes of a logged in user.
type Exporter struct {
	user     *catchapi.User
	log      zerolog.Logger
	pageSize int
	mediaDir string
	comments bool
	now      func() time.Time
}

// NewExporter returns an Exporter reading through u with the settings of cfg.
func NewExporter(u *catchapi.User, cfg *Config, log zerolog.Logger) *Exporter {
	return &Exporter{
		user:     u,
		log:      log,
		pageSize: cfg.PageSize,
		mediaDir: cfg.MediaDir,
		comments: cfg.Comments,
		now:      time.Now,
	}
}

// Collect pages through every note of the account.
func (e *Exporter) Collect(ctx context.Context) (*Export, error) {
	exp := &Export{
		ExportedAt: e.now().UTC(),
		Endpoint:   e.user.Session().BaseURL(),
		User: User{
			ID:        e.user.ID,
			UserName:  e.user.UserName,
			Email:     e.user.Email,
			CreatedAt: e.user.CreatedAt,
		},
		Notes: []Note{},
		Tags:  []Tag{},
	}

	if e.mediaDir != "" {
		if err := os.MkdirAll(e.mediaDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create media directory failed")
		}
	}

	it := e.user.NotesWithPageSize(e.pageSize)
	for n, err := range it.All(ctx) {
		if err != nil {
			return nil, errors.Wrapf(err, "list notes failed after %d notes", len(exp.Notes))
		}
		note, err := e.note(ctx, n)
		if err != nil {
			return nil, err
		}
		exp.Notes = append(exp.Notes, note)
	}
	exp.Count = len(exp.Notes)

	tags, err := e.user.Tags(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list tags failed")
	}
	for _, t := range tags {
		exp.Tags = append(exp.Tags, Tag{Name: t.Name, Count: t.Count})
	}

	e.log.Info().Int("notes", exp.Count).Int("tags", len(exp.Tags)).Msg("collected export")
	return exp, nil
}

func (e *Exporter) note(ctx context.Context, n *catchapi.Note) (Note, error) {
	out := Note{
		ID:         n.ID,
		CreatedAt:  n.CreatedAt,
		ModifiedAt: n.ModifiedAt,
		Text:       n.Text,
		Source:     n.Source,
		SourceURL:  n.SourceURL,
		Tags:       n.Tags,
		Location:   n.Location,
	}
	if !n.ReminderAt.IsZero() {
		r := n.ReminderAt
		out.ReminderAt = &r
	}

	for _, m := range n.Media {
		md := Media{
			ID:     m.ID,
			Type:   m.Type,
			MD5:    m.MD5,
			Width:  m.Width,
			Height: m.Height,
			Src:    m.Src,
		}
		if e.mediaDir != "" {
			file, err := e.download(ctx, m)
			if err != nil {
				return Note{}, err
			}
			md.File = file
		}
		out.Media = append(out.Media, md)
	}

	if e.comments {
		comments, err := n.Comments(ctx)
		if err != nil {
			return Note{}, errors.Wrapf(err, "list comments of note %s failed", n.ID)
		}
		for _, c := range comments {
			out.Comments = append(out.Comments, Comment{
				ID:        c.ID,
				Author:    c.Author.UserName,
				CreatedAt: c.CreatedAt,
				Text:      c.Text,
			})
		}
	}

	e.log.Debug().Str(logger.FieldNoteID, n.ID).Int("media", len(out.Media)).Msg("exported note")
	return out, nil
}

// download saves the attachment as <media id><ext> in the media directory.
func (e *Exporter) download(ctx context.Context, m *catchapi.Media) (string, error) {
	data := m.Data
	if data == nil {
		var err error
		if data, err = m.FetchData(ctx); err != nil {
			return "", errors.Wrapf(err, "download media %s failed", m.ID)
		}
	}

	name := m.ID + extension(data)
	if err := os.WriteFile(filepath.Join(e.mediaDir, name), data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write media %s failed", m.ID)
	}
	return name, nil
}

func extension(data []byte) string {
	exts, _ := mime.ExtensionsByType(http.DetectContentType(data))
	if len(exts) == 0 {
		return ".bin"
	}
	// ExtensionsByType sorts, so prefer the conventional spelling where one
	// exists.
	for _, ext := range exts {
		switch ext {
		case ".jpg", ".png", ".gif", ".webp":
			return ext
		}
	}
	return exts[0]
}

// Write encodes exp to w in format.
func Write(w io.Writer, format string, exp *Export) error {
	switch format {
	case FormatJSON:
		data, err := sonic.ConfigStd.MarshalIndent(exp, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode json failed")
		}
		_, err = w.Write(append(data, '\n'))
		return errors.Wrap(err, "write export failed")
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(exp); err != nil {
			return errors.Wrap(err, "encode yaml failed")
		}
		return errors.Wrap(enc.Close(), "encode yaml failed")
	default:
		return errors.Errorf("unknown format %q", format)
	}
}
