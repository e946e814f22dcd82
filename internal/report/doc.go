// Package report filters the tower recommendations table and renders the
// result for the dashboard, the terminal and a downloadable PDF.
//
// # Data flow
//
//	dataset → FilterByDate → Search → preview truncation → RenderDisplay
//	                                                     → Renderer.Document
//
// Filter composes the first three steps into a FilteredView. Both renderers
// consume the same view, so the on-screen rows and the PDF blocks always
// agree on content, order and severity styling.
//
// # Date ranges
//
// Ranges are closed intervals over calendar dates; the time of day of a
// record's timestamp is ignored. A range with only one bound selected is not
// applied at all (the view reports PartialRange) because a dashboard date
// picker passes through that state while the user is choosing the second
// date. A range whose start is after its end is a ValidationError.
//
// # Preview truncation
//
// Without a search term only the first DefaultPreviewLimit rows are exposed
// to the renderers and the view is marked Truncated. The full match set stays
// on the view in Matched. Any search term disables truncation.
//
// # Severity
//
// Recommendation text is classified by a table of marker substrings:
//
//	"🚨" → Critical
//	"⚠"  → Warning (also matches "⚠️")
//	none → Normal
//
// Text carrying both markers is Critical. Each severity maps to exactly one
// Style, which every surface uses.
//
// # Empty results
//
// An empty view renders a Display with Empty set and the no-results notice.
// Renderer.Document returns ErrEmptyView and no bytes.
package report
