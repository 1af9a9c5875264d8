package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// cookieButtonLabels are tried in order; the first visible button whose text
// contains a label gets clicked. Lowercased for case-insensitive matching.
var cookieButtonLabels = []string{
	"accept all",
	"allow all",
	"accept",
	"i agree",
	"agree",
	"got it",
	"ok",
	"alle akzeptieren",
	"tout accepter",
}

const dismissScript = `
(function() {
  var labels = %s;
  var buttons = document.querySelectorAll('button, [role="button"]');
  for (var i = 0; i < labels.length; i++) {
    for (var j = 0; j < buttons.length; j++) {
      var text = (buttons[j].innerText || '').trim().toLowerCase();
      if (text && text.indexOf(labels[i]) !== -1) {
        buttons[j].click();
        return true;
      }
    }
  }
  return false;
})()
`

// dismissCookieBanner clicks the first cookie-consent button it recognizes,
// then pauses briefly. Best effort: failures are swallowed, a page without a
// banner is a no-op.
func (s *Session) dismissCookieBanner() {
	clickCtx, cancel := context.WithTimeout(s.ctx, 1500*time.Millisecond)
	defer cancel()

	labels := "["
	for i, l := range cookieButtonLabels {
		if i > 0 {
			labels += ","
		}
		labels += fmt.Sprintf("%q", l)
	}
	labels += "]"

	var clicked bool
	if err := chromedp.Run(clickCtx,
		chromedp.Evaluate(fmt.Sprintf(dismissScript, labels), &clicked),
	); err != nil {
		s.logger.Debug("[browser] Cookie banner check failed: %v", err)
		return
	}

	if clicked {
		s.logger.Debug("[browser] Dismissed cookie banner")
		s.pacer.Pause(400*time.Millisecond, 900*time.Millisecond)
	}
}

// scroll issues steps downward scroll deltas with randomized pauses in
// between, triggering lazy-loaded content. Individual step failures are
// ignored.
func (s *Session) scroll(steps int) {
	for i := 0; i < steps; i++ {
		stepCtx, cancel := context.WithTimeout(s.ctx, time.Second)
		err := chromedp.Run(stepCtx,
			chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", s.scrollDelta), nil),
		)
		cancel()
		if err != nil {
			s.logger.Debug("[browser] Scroll step %d failed: %v", i+1, err)
		}
		s.pacer.Pause(400*time.Millisecond, 900*time.Millisecond)
	}
}
