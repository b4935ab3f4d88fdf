package glossary

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"compendium/fragment"
)

const glossaryMarkup = `<definition_list>
	<definition id="dfn-author">
		<term>Author</term>
		<paragraph>The person who actually creates the work.</paragraph>
	</definition>
	<definition id="dfn-deposit">
		<term>Deposit</term>
		<paragraph>The copy or copies of the work submitted for registration.</paragraph>
	</definition>
</definition_list>`

type stubFetcher struct {
	mu    sync.Mutex
	body  string
	err   error
	calls int32
}

func (f *stubFetcher) Fetch(ctx context.Context, filename string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.body, nil
}

func contentWithLinks(t *testing.T) *fragment.Document {
	t.Helper()
	doc, err := fragment.ParseString(`<chapter>
		<section id="sec-1">
			<paragraph>The <a href="glossary.html#dfn-author">author</a> submits a
			<a href="/glossary.html#dfn-deposit">deposit</a>.
			See <a href="ch200-registration-process.html#sec-202">202</a>.</paragraph>
		</section>
	</chapter>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func TestRefreshBuildsIndexOnce(t *testing.T) {
	f := &stubFetcher{body: glossaryMarkup}
	o := New(f)
	doc := contentWithLinks(t)

	o.Refresh(context.Background(), doc.Root)
	o.Refresh(context.Background(), doc.Root)

	if got := atomic.LoadInt32(&f.calls); got != 1 {
		t.Errorf("expected exactly 1 glossary fetch, got %d", got)
	}
	if !o.Ready() {
		t.Fatal("overlay should be ready after refresh")
	}

	markup, ok := o.Definition("dfn-author")
	if !ok {
		t.Fatal("expected dfn-author definition")
	}
	if !strings.Contains(markup, "actually creates the work") {
		t.Errorf("unexpected definition markup %q", markup)
	}

	if !o.Linked("dfn-author") || !o.Linked("dfn-deposit") {
		t.Error("expected both glossary links to be registered")
	}
	if o.Linked("sec-202") {
		t.Error("chapter cross-reference mistaken for a glossary link")
	}
}

func TestConcurrentRefreshCollapses(t *testing.T) {
	f := &stubFetcher{body: glossaryMarkup}
	o := New(f)
	doc := contentWithLinks(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.Refresh(context.Background(), doc.Root)
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&f.calls); got != 1 {
		t.Errorf("concurrent refreshes should collapse into 1 fetch, got %d", got)
	}
}

func TestFetchFailureIsRetryable(t *testing.T) {
	f := &stubFetcher{err: errors.New("boom")}
	o := New(f)
	doc := contentWithLinks(t)

	// Failed fetch: refresh stays a safe no-op.
	o.Refresh(context.Background(), doc.Root)
	if o.Ready() {
		t.Fatal("overlay should not be ready after a failed fetch")
	}
	if o.Hover("dfn-author", 0, 0, 80, 24) {
		t.Error("hover should be inert while the index is unavailable")
	}

	// Next refresh retries and succeeds.
	f.mu.Lock()
	f.err = nil
	f.body = glossaryMarkup
	f.mu.Unlock()

	o.Refresh(context.Background(), doc.Root)
	if !o.Ready() {
		t.Fatal("overlay should recover once the fetch succeeds")
	}
}

func TestMalformedGlossaryNotCached(t *testing.T) {
	f := &stubFetcher{body: `<chapter><section id="s"></section></chapter>`}
	o := New(f)
	doc := contentWithLinks(t)

	o.Refresh(context.Background(), doc.Root)
	if o.Ready() {
		t.Error("a non-glossary document must not populate the index")
	}
}

func TestTooltipLifecycle(t *testing.T) {
	f := &stubFetcher{body: glossaryMarkup}
	o := New(f)
	doc := contentWithLinks(t)
	o.Refresh(context.Background(), doc.Root)

	if !o.Hover("dfn-author", 10, 5, 80, 24) {
		t.Fatal("hover should show the tooltip")
	}
	tip := o.Current()
	if !tip.Visible || tip.TermID != "dfn-author" {
		t.Fatalf("unexpected tooltip state %+v", tip)
	}
	if tip.X != 12 || tip.Y != 6 {
		t.Errorf("tooltip at (%d,%d), expected pointer offset (12,6)", tip.X, tip.Y)
	}

	o.Move(70, 20, 80, 24)
	tip = o.Current()
	if tip.X+TooltipWidth > 80 || tip.Y+TooltipHeight > 24 {
		t.Errorf("tooltip not clamped to viewport: (%d,%d)", tip.X, tip.Y)
	}

	termID, closed := o.Click()
	if !closed || termID != "dfn-author" {
		t.Errorf("click = (%q,%v), expected to close dfn-author", termID, closed)
	}
	if o.Current().Visible {
		t.Error("tooltip should be hidden after click")
	}
	if _, closed := o.Click(); closed {
		t.Error("second click should be a no-op")
	}
}

func TestHoverUnknownTerm(t *testing.T) {
	f := &stubFetcher{body: glossaryMarkup}
	o := New(f)
	doc := contentWithLinks(t)
	o.Refresh(context.Background(), doc.Root)

	if o.Hover("dfn-missing", 0, 0, 80, 24) {
		t.Error("hover on an unlinked term should not show a tooltip")
	}
}
