// Package manifest holds the static chapter list for the Compendium viewer.
package manifest

import (
	"fmt"
	"strings"
)

// Chapter describes one document in the Compendium.
type Chapter struct {
	Number   string // display number, empty for front/back matter
	Title    string
	Filename string // identifies the chapter; also the fetch path
}

// GlossaryFilename is the filename of the glossary document, which gets an
// A-Z index instead of an outline in the side navigation.
const GlossaryFilename = "glossary.html"

// chapters is the ordered document list. The first entry is the default
// landing document.
var chapters = []Chapter{
	{Number: "", Title: "Introduction", Filename: "introduction.html"},
	{Number: "100", Title: "U.S. Copyright Office and the Compendium", Filename: "ch100-general-background.html"},
	{Number: "200", Title: "Overview of the Registration Process", Filename: "ch200-registration-process.html"},
	{Number: "300", Title: "Copyrightable Authorship", Filename: "ch300-copyrightable-authorship.html"},
	{Number: "400", Title: "Who May File an Application", Filename: "ch400-application.html"},
	{Number: "500", Title: "Identifying the Work or Works Covered by a Registration", Filename: "ch500-identifying-works.html"},
	{Number: "600", Title: "Examination Practices", Filename: "ch600-examination-practices.html"},
	{Number: "700", Title: "Literary Works", Filename: "ch700-literary-works.html"},
	{Number: "800", Title: "Works of the Performing Arts", Filename: "ch800-performing-arts.html"},
	{Number: "900", Title: "Visual Art Works", Filename: "ch900-visual-art.html"},
	{Number: "1000", Title: "Websites and Website Content", Filename: "ch1000-websites.html"},
	{Number: "1100", Title: "Registration for Multiple Works", Filename: "ch1100-registration-multiple-works.html"},
	{Number: "1200", Title: "Mask Works", Filename: "ch1200-mask-works.html"},
	{Number: "1300", Title: "Vessel Designs", Filename: "ch1300-vessel-designs.html"},
	{Number: "1400", Title: "Applications and Filing Fees", Filename: "ch1400-applications-filing-fees.html"},
	{Number: "1500", Title: "Deposits", Filename: "ch1500-deposits.html"},
	{Number: "1600", Title: "Preregistration", Filename: "ch1600-preregistration.html"},
	{Number: "1700", Title: "Administrative Appeals", Filename: "ch1700-administrative-appeals.html"},
	{Number: "1800", Title: "Post-Registration Procedures", Filename: "ch1800-post-registration.html"},
	{Number: "1900", Title: "Publication", Filename: "ch1900-publication.html"},
	{Number: "2000", Title: "Foreign Works: Eligibility and GATT Registration", Filename: "ch2000-foreign-works.html"},
	{Number: "2100", Title: "Renewal Registration", Filename: "ch2100-renewal-registration.html"},
	{Number: "2200", Title: "Notice of Copyright", Filename: "ch2200-notice.html"},
	{Number: "2300", Title: "Recordation Procedures", Filename: "ch2300-recordation.html"},
	{Number: "2400", Title: "U.S. Copyright Office Services", Filename: "ch2400-office-services.html"},
	{Number: "", Title: "Glossary", Filename: GlossaryFilename},
	{Number: "", Title: "Table of Authorities", Filename: "table-of-authorities.html"},
	{Number: "", Title: "Revision History", Filename: "revision-history.html"},
}

// Chapters returns the ordered chapter list.
func Chapters() []Chapter {
	return chapters
}

// Default returns the default landing document.
func Default() Chapter {
	return chapters[0]
}

// ByFilename looks up a chapter by its filename.
func ByFilename(filename string) (Chapter, bool) {
	for _, c := range chapters {
		if c.Filename == filename {
			return c, true
		}
	}
	return Chapter{}, false
}

// PageTitle returns the title shown for this chapter, "200: Overview of the
// Registration Process" for numbered chapters and the bare title otherwise.
func (c Chapter) PageTitle() string {
	if c.Number == "" {
		return c.Title
	}
	return fmt.Sprintf("%s: %s", c.Number, c.Title)
}

// IsGlossary reports whether filename names the glossary document.
func IsGlossary(filename string) bool {
	return filename == GlossaryFilename
}

// PagePath formats the address path for a chapter, "/<filename>[#<hash>]".
func PagePath(filename, hash string) string {
	if hash == "" {
		return "/" + filename
	}
	return "/" + filename + "#" + hash
}

// ParsePath splits an address path into filename and hash, matching the
// filename against the manifest. ok is false for paths that name no known
// chapter.
func ParsePath(path string) (filename, hash string, ok bool) {
	if i := strings.IndexByte(path, '#'); i >= 0 {
		hash = path[i+1:]
		path = path[:i]
	}
	filename = strings.TrimPrefix(path, "/")
	_, ok = ByFilename(filename)
	return filename, hash, ok
}
