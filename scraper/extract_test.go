package scraper

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"review-harvester/models"
)

func containerFrom(t *testing.T, html, selector string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		t.Fatalf("fixture has no %q element", selector)
	}
	return sel
}

func TestFirstMatchPriorityOrder(t *testing.T) {
	chain := []fieldStrategy{
		{selector: "div.primary"},
		{selector: "div.secondary"},
		{selector: "div.tertiary"},
	}

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"earlier candidate wins over later match",
			`<section><div class="primary">first</div><div class="tertiary">third</div></section>`,
			"first",
		},
		{
			"only a late candidate matches",
			`<section><div class="tertiary">third</div></section>`,
			"third",
		},
		{
			"empty earlier candidate falls through",
			`<section><div class="primary">  </div><div class="secondary">second</div></section>`,
			"second",
		},
		{
			"no candidate matches",
			`<section><div class="other">nope</div></section>`,
			"",
		},
	}

	for _, tt := range tests {
		container := containerFrom(t, tt.html, "section")
		if got := firstMatch(container, chain); got != tt.want {
			t.Errorf("%s: firstMatch() = %q; want %q", tt.name, got, tt.want)
		}
	}
}

func TestFirstMatchConstraints(t *testing.T) {
	t.Run("minLen rejects short fragments", func(t *testing.T) {
		chain := []fieldStrategy{
			{selector: "p", minLen: minBodyLength},
		}
		container := containerFrom(t,
			`<section><p>too short</p><p>this paragraph is comfortably longer than twenty characters</p></section>`,
			"section")
		got := firstMatch(container, chain)
		if !strings.HasPrefix(got, "this paragraph") {
			t.Errorf("firstMatch() = %q; want the long paragraph", got)
		}
	})

	t.Run("contains filters by substring", func(t *testing.T) {
		chain := []fieldStrategy{
			{selector: "span", contains: "Reviewed on"},
		}
		container := containerFrom(t,
			`<section><span>Helpful?</span><span>Reviewed on March 5, 2024</span></section>`,
			"section")
		if got := firstMatch(container, chain); got != "Reviewed on March 5, 2024" {
			t.Errorf("firstMatch() = %q", got)
		}
	})

	t.Run("attr reads attributes instead of text", func(t *testing.T) {
		chain := []fieldStrategy{
			{selector: "span.rating"},
			{selector: "meta[itemprop='ratingValue']", attr: "content"},
		}
		container := containerFrom(t,
			`<section><meta itemprop="ratingValue" content="4.5"></section>`,
			"section")
		if got := firstMatch(container, chain); got != "4.5" {
			t.Errorf("firstMatch() = %q; want 4.5", got)
		}
	})

	t.Run("whitespace is collapsed", func(t *testing.T) {
		chain := []fieldStrategy{{selector: "h3"}}
		container := containerFrom(t,
			"<section><h3>\n  Great \t tool  </h3></section>",
			"section")
		if got := firstMatch(container, chain); got != "Great tool" {
			t.Errorf("firstMatch() = %q; want %q", got, "Great tool")
		}
	})
}

func TestAdapterExtract(t *testing.T) {
	window := models.DateWindow{
		Start: models.NewDate(2024, time.January, 1),
		End:   models.NewDate(2024, time.March, 31),
	}

	card := `<div class="paper">
		<h3>Solid product</h3>
		<time>March 10, 2024</time>
		<div itemprop="reviewBody">This product saved our team hours every single week.</div>
		<span itemprop="ratingValue">4.5</span>
	</div>`

	rev, old := g2Adapter.extract(containerFrom(t, card, "div.paper"), window)
	if old {
		t.Fatal("in-window review flagged as old")
	}
	if rev == nil {
		t.Fatal("expected a review")
	}
	if rev.Source != models.SourceG2 {
		t.Errorf("Source = %q", rev.Source)
	}
	if rev.Title != "Solid product" {
		t.Errorf("Title = %q", rev.Title)
	}
	if !strings.HasPrefix(rev.Body, "This product saved") {
		t.Errorf("Body = %q", rev.Body)
	}
	if rev.Date != models.NewDate(2024, time.March, 10) {
		t.Errorf("Date = %v", rev.Date)
	}
	if rev.Rating == nil || *rev.Rating != "4.5" {
		t.Errorf("Rating = %v", rev.Rating)
	}
}

func TestAdapterExtractDegradedFields(t *testing.T) {
	window := models.DateWindow{
		Start: models.NewDate(2024, time.January, 1),
		End:   models.NewDate(2024, time.December, 31),
	}

	// No title, no rating: record still accepted with empty/null fields.
	card := `<div class="paper">
		<time>2024-06-01</time>
		<div itemprop="reviewBody">Missing chrome does not disqualify an otherwise good review.</div>
	</div>`

	rev, old := g2Adapter.extract(containerFrom(t, card, "div.paper"), window)
	if old || rev == nil {
		t.Fatalf("extract() = (%v, %v); want accepted review", rev, old)
	}
	if rev.Title != "" {
		t.Errorf("Title = %q; want empty", rev.Title)
	}
	if rev.Rating != nil {
		t.Errorf("Rating = %v; want nil", *rev.Rating)
	}
}

func TestAdapterExtractRejections(t *testing.T) {
	window := models.DateWindow{
		Start: models.NewDate(2024, time.January, 1),
		End:   models.NewDate(2024, time.March, 31),
	}

	tests := []struct {
		name    string
		card    string
		wantOld bool
	}{
		{
			"body too short",
			`<div class="paper"><time>2024-02-01</time><div itemprop="reviewBody">Nice.</div></div>`,
			false,
		},
		{
			"unparseable date excludes record",
			`<div class="paper"><time>sometime last spring</time><div itemprop="reviewBody">A valid body with no usable date attached to it.</div></div>`,
			false,
		},
		{
			"missing date excludes record",
			`<div class="paper"><div itemprop="reviewBody">A valid body with no date element at all present.</div></div>`,
			false,
		},
		{
			"date after window",
			`<div class="paper"><time>2024-05-01</time><div itemprop="reviewBody">Recent review falling outside the requested window.</div></div>`,
			false,
		},
		{
			"date before window sets old flag",
			`<div class="paper"><time>2023-12-15</time><div itemprop="reviewBody">Old review predating the window start entirely.</div></div>`,
			true,
		},
	}

	for _, tt := range tests {
		rev, old := g2Adapter.extract(containerFrom(t, tt.card, "div.paper"), window)
		if rev != nil {
			t.Errorf("%s: expected rejection, got %+v", tt.name, rev)
		}
		if old != tt.wantOld {
			t.Errorf("%s: old = %v; want %v", tt.name, old, tt.wantOld)
		}
	}
}
