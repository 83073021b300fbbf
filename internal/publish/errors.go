package publish

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codePageContent = "PAGE_CONTENT_FAILED"
	codePageRender  = "PAGE_RENDER_FAILED"
	codePageStyle   = "PAGE_STYLE_FAILED"
	codePageUpload  = "PAGE_UPLOAD_FAILED"

	codeLocales     = "PUBLISH_LOCALES_FAILED"
	codeStyles      = "PUBLISH_STYLES_FAILED"
	codeSettings    = "PUBLISH_SETTINGS_FAILED"
	codePages       = "PUBLISH_PAGES_FAILED"
	codeSitemap     = "PUBLISH_SITEMAP_FAILED"
	codeSearchIndex = "PUBLISH_SEARCH_INDEX_FAILED"
)

var (
	errLocalesRequired  = errors.New("publish: locale provider is required")
	errSettingsRequired = errors.New("publish: site settings provider is required")
	errPagesRequired    = errors.New("publish: page provider is required")
	errRendererRequired = errors.New("publish: html renderer is required")
	errStorageRequired  = errors.New("publish: blob storage is required")
)

// RenderError reports a page that could not be published. The wrapped cause carries a
// go-errors category and text code.
type RenderError struct {
	Title string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("Unable to render page %s: %v", e.Title, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func pageError(title string, err error, category goerrors.Category, code, message string) error {
	return &RenderError{
		Title: title,
		Err:   goerrors.Wrap(err, category, message).WithTextCode(code),
	}
}

// RunError reports a publish run that stopped before finishing. Step names the failed
// stage and Code its PUBLISH_* text code.
type RunError struct {
	Step string
	Code string
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("publish: %s: %v", e.Step, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func runError(err error, code, step string) error {
	if err == nil {
		return nil
	}
	return &RunError{
		Step: step,
		Code: code,
		Err:  goerrors.Wrap(err, goerrors.CategoryExternal, step).WithTextCode(code),
	}
}
