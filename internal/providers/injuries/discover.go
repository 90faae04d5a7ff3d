package injuries

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/preston-bernstein/nba-next-game-service/internal/timeutil"
)

var reportFile = regexp.MustCompile(`Injury-Report_(\d{4}-\d{2}-\d{2})_(\d{1,2})(?:_(\d{2}))?(AM|PM)\.pdf`)

// slotMinutes is the publication cadence used to guess a report name.
const slotMinutes = 15

// reportLink is one discovered document with its publication time as minutes after midnight.
type reportLink struct {
	URL     string
	Date    string
	Minutes int
}

// discoverLinks collects report document links from the landing page.
func discoverLinks(html []byte, pageURL string) ([]reportLink, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("injuries: parse landing page: %w", err)
	}
	base, _ := url.Parse(pageURL)
	seen := make(map[string]struct{})
	var links []reportLink
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		link, ok := parseReportLink(href)
		if !ok {
			return
		}
		if ref, err := url.Parse(href); err == nil && base != nil {
			link.URL = base.ResolveReference(ref).String()
		}
		if _, dup := seen[link.URL]; dup {
			return
		}
		seen[link.URL] = struct{}{}
		links = append(links, link)
	})
	return links, nil
}

func parseReportLink(href string) (reportLink, bool) {
	m := reportFile.FindStringSubmatch(href)
	if m == nil {
		return reportLink{}, false
	}
	hour, _ := strconv.Atoi(m[2])
	minute := 0
	if m[3] != "" {
		minute, _ = strconv.Atoi(m[3])
	}
	if hour < 1 || hour > 12 || minute > 59 {
		return reportLink{}, false
	}
	hour %= 12
	if m[4] == "PM" {
		hour += 12
	}
	return reportLink{URL: href, Date: m[1], Minutes: hour*60 + minute}, true
}

// latestFor picks the latest report published on date.
func latestFor(links []reportLink, date string) (reportLink, bool) {
	var best reportLink
	found := false
	for _, l := range links {
		if l.Date != date {
			continue
		}
		if !found || l.Minutes > best.Minutes {
			best, found = l, true
		}
	}
	return best, found
}

// guessURLs builds report names for the current 15-minute slot and the few
// before it, newest first, without crossing midnight.
func guessURLs(docBase string, localNow time.Time, slots int) []string {
	base := strings.TrimRight(docBase, "/") + "/"
	slot := localNow.Truncate(time.Minute)
	slot = slot.Add(-time.Duration(slot.Minute()%slotMinutes) * time.Minute)
	date := timeutil.FormatDate(localNow)
	var out []string
	for i := 0; i < slots; i++ {
		t := slot.Add(-time.Duration(i*slotMinutes) * time.Minute)
		if timeutil.FormatDate(t) != date {
			break
		}
		out = append(out, base+ReportFileName(t))
	}
	return out
}

// ReportFileName renders the document name for a publication time, e.g.
// Injury-Report_2025-11-08_05_30PM.pdf.
func ReportFileName(t time.Time) string {
	return "Injury-Report_" + timeutil.FormatDate(t) + "_" + t.Format("03_04PM") + ".pdf"
}
