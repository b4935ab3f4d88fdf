package fragment

import (
	"strings"
	"testing"
)

const chapterMarkup = `<!DOCTYPE html>
<html>
<body>
<chapter id="ch200">
	<section id="sec-201" label="201">
		<section_title><num>201</num> What This Chapter Covers</section_title>
		<paragraph>This chapter covers the registration process.</paragraph>
		<subsection id="subsec-201-1" label="201.1">
			<subsection_title><num>201.1</num> The Application</subsection_title>
			<provision id="prov-201-1-A">
				<provision_title><num>A</num> Online Applications</provision_title>
			</provision>
			<provision>
				<provision_title><num>B</num> Unlinkable Provision</provision_title>
			</provision>
		</subsection>
	</section>
	<section id="sec-202">
		<paragraph>Registration is a legal formality intended to make a public
		record of the basic facts of a particular copyright.</paragraph>
	</section>
	<section>
		<section_title><num>203</num> Skipped Section</section_title>
	</section>
</chapter>
</body>
</html>`

func TestParseChapter(t *testing.T) {
	doc, err := ParseString(chapterMarkup)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if doc.Kind != KindChapter {
		t.Fatalf("expected KindChapter, got %v", doc.Kind)
	}

	// Section without an id is skipped entirely.
	if len(doc.Outline) != 2 {
		t.Fatalf("expected 2 outline sections, got %d", len(doc.Outline))
	}

	sec := doc.Outline[0]
	if sec.ID != "sec-201" {
		t.Errorf("expected id 'sec-201', got %q", sec.ID)
	}
	if sec.Kind != Section {
		t.Errorf("expected Section kind, got %v", sec.Kind)
	}
	if sec.Title != "201 What This Chapter Covers" {
		t.Errorf("unexpected title %q", sec.Title)
	}

	if len(sec.Children) != 1 {
		t.Fatalf("expected 1 subsection, got %d", len(sec.Children))
	}
	sub := sec.Children[0]
	if sub.Title != "201.1 The Application" {
		t.Errorf("unexpected subsection title %q", sub.Title)
	}

	// The id-less provision is dropped; the other one survives.
	if len(sub.Children) != 1 {
		t.Fatalf("expected 1 provision, got %d", len(sub.Children))
	}
	if sub.Children[0].Title != "A Online Applications" {
		t.Errorf("unexpected provision title %q", sub.Children[0].Title)
	}
}

func TestTitleFallbackExcerpt(t *testing.T) {
	doc, err := ParseString(chapterMarkup)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	sec := doc.Outline[1]
	if !strings.HasPrefix(sec.Title, "Section sec-202: Registration is a legal formality") {
		t.Errorf("unexpected fallback title %q", sec.Title)
	}
	if !strings.HasSuffix(sec.Title, "...") {
		t.Errorf("expected truncated excerpt, got %q", sec.Title)
	}
}

func TestTitleNumberOnly(t *testing.T) {
	doc, err := ParseString(`<chapter>
		<section id="sec-900"><section_title><num>900</num></section_title></section>
		<section id="sec-901"><section_title>Untitled Matters</section_title></section>
	</chapter>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := doc.Outline[0].Title; got != "900" {
		t.Errorf("number-only title = %q, expected '900'", got)
	}
	if got := doc.Outline[1].Title; got != "Untitled Matters" {
		t.Errorf("text-only title = %q, expected 'Untitled Matters'", got)
	}
}

func TestParseAuthorityTable(t *testing.T) {
	doc, err := ParseString(`<authority_table>
		<authority_group id="auth-statutes">
			<group_title>Statutes</group_title>
			<cite id="cite-17usc">17 U.S.C.</cite>
		</authority_group>
		<authority_group id="auth-regulations">
			<group_title>Regulations</group_title>
		</authority_group>
	</authority_table>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if doc.Kind != KindAuthorityTable {
		t.Fatalf("expected KindAuthorityTable, got %v", doc.Kind)
	}
	if len(doc.Outline) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(doc.Outline))
	}
	// Authority groups are flat: the cite never becomes a child.
	if len(doc.Outline[0].Children) != 0 {
		t.Errorf("expected flat group, got %d children", len(doc.Outline[0].Children))
	}
	if doc.Outline[0].Title != "Statutes" {
		t.Errorf("unexpected group title %q", doc.Outline[0].Title)
	}
}

func TestParseFallbackBody(t *testing.T) {
	doc, err := ParseString(`<html><body><p>Plain page with no recognized root.</p></body></html>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Kind != KindUnknown {
		t.Errorf("expected KindUnknown, got %v", doc.Kind)
	}
	if doc.Root == nil || doc.Root.Data != "body" {
		t.Errorf("expected body fallback root")
	}
	if len(doc.Outline) != 0 {
		t.Errorf("expected empty outline, got %d nodes", len(doc.Outline))
	}
}

func TestFindByID(t *testing.T) {
	doc, err := ParseString(chapterMarkup)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	n := FindByID(doc.Root, "prov-201-1-A")
	if n == nil {
		t.Fatal("expected to find prov-201-1-A")
	}
	if n.Data != "provision" {
		t.Errorf("expected provision element, got %q", n.Data)
	}
	if FindByID(doc.Root, "no-such-id") != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestDefinitions(t *testing.T) {
	doc, err := ParseString(`<definition_list>
		<definition id="dfn-author">
			<term>Author</term>
			<paragraph>The person who actually creates the work.</paragraph>
		</definition>
		<definition>
			<term>Unlinkable</term>
		</definition>
		<definition id="dfn-best-edition">
			<term>Best Edition</term>
			<paragraph>The edition published in the United States.</paragraph>
		</definition>
	</definition_list>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	defs := doc.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Term != "Author" {
		t.Errorf("expected term 'Author', got %q", defs[0].Term)
	}
	if !strings.Contains(defs[0].Markup, "actually creates the work") {
		t.Errorf("definition markup missing body: %q", defs[0].Markup)
	}
	if strings.Contains(defs[0].Markup, "<term>") {
		t.Errorf("definition markup should exclude the term element: %q", defs[0].Markup)
	}
}

func TestDefinitionsOnChapter(t *testing.T) {
	doc, err := ParseString(chapterMarkup)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if defs := doc.Definitions(); defs != nil {
		t.Errorf("expected no definitions for a chapter, got %d", len(defs))
	}
}
