package usecase

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"sort"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
	"github.com/advancementhq/feedback-pipeline/internal/core/ports"
)

// themeKeywords buckets email bodies into reporting themes for the
// weekly digest. An email can count toward several themes.
var themeKeywords = map[string][]string{
	"Giving & Donations":       {"donation", "donate", "giving", "gift", "contribute", "support", "pledge", "bequest", "endowment"},
	"Events & Reunions":        {"event", "reunion", "gathering", "homecoming", "attend", "rsvp", "invitation"},
	"Career & Networking":      {"career", "job", "networking", "mentor", "internship", "employment", "hiring"},
	"Alumni Updates":           {"update", "address", "contact", "information", "moved", "married", "changed"},
	"Gratitude & Appreciation": {"thank", "grateful", "appreciate", "wonderful", "amazing", "love"},
	"Concerns & Complaints":    {"concern", "disappointed", "issue", "problem", "complaint", "unhappy", "frustrated"},
	"Campus Life":              {"campus", "facilities", "building", "dining", "housing", "library"},
	"Academic Programs":        {"program", "course", "degree", "major", "curriculum", "faculty", "professor"},
}

const fallbackTheme = "General Alumni Correspondence"

// ThemeCount is one reporting theme with the number of emails that
// mentioned it during the week.
type ThemeCount struct {
	Name  string
	Count int
}

// DigestReport holds everything the digest templates render.
type DigestReport struct {
	WeekStart time.Time
	WeekEnd   time.Time

	Total    int
	Positive int
	Negative int
	Neutral  int

	PausedGiving   int
	RemovedBequest int
	ResumedGiving  int
	AddedBequest   int

	MajorThemes []ThemeCount
	MinorThemes []ThemeCount

	Summary  string
	SheetURL string
	Rows     []domain.OutputRow
}

// PositivePct returns the positive share in percent for rendering.
func (r *DigestReport) PositivePct() float64 { return pct(r.Positive, r.Total) }
func (r *DigestReport) NegativePct() float64 { return pct(r.Negative, r.Total) }
func (r *DigestReport) NeutralPct() float64  { return pct(r.Neutral, r.Total) }

// GivingAlerts is the number of alumni whose giving status changed for
// the worse during the week.
func (r *DigestReport) GivingAlerts() int { return r.PausedGiving + r.RemovedBequest }

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// WeeklyDigestUseCase assembles and sends the Monday morning summary
// of the previous week's classified feedback.
type WeeklyDigestUseCase struct {
	sink      ports.RowSink
	sender    ports.DigestSender
	ledger    ports.ProcessedLedger
	recipient string
	sheetURL  string
	logger    *slog.Logger
}

func NewWeeklyDigestUseCase(
	sink ports.RowSink,
	sender ports.DigestSender,
	ledger ports.ProcessedLedger,
	recipient string,
	sheetURL string,
	logger *slog.Logger,
) *WeeklyDigestUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeeklyDigestUseCase{
		sink:      sink,
		sender:    sender,
		ledger:    ledger,
		recipient: recipient,
		sheetURL:  sheetURL,
		logger:    logger,
	}
}

// SendWeekly builds and sends the digest covering the seven days from
// weekStart. The ledger guards against re-sending the same week when
// the scheduler fires twice.
func (uc *WeeklyDigestUseCase) SendWeekly(ctx context.Context, weekStart time.Time) error {
	weekStart = weekStart.Truncate(24 * time.Hour)
	weekEnd := weekStart.AddDate(0, 0, 7)

	sent, err := uc.ledger.DigestSent(ctx, weekStart)
	if err != nil {
		return fmt.Errorf("check digest ledger: %w", err)
	}
	if sent {
		uc.logger.Info("digest_already_sent", "week_start", weekStart.Format("2006-01-02"))
		return nil
	}

	rows, err := uc.sink.ReadRows(ctx, weekStart, weekEnd)
	if err != nil {
		return fmt.Errorf("read weekly rows: %w", err)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ReceivedAt.Before(rows[j].ReceivedAt) })

	report := uc.buildReport(rows, weekStart, weekEnd)

	subject := fmt.Sprintf("Weekly Alumni Inbox Summary: %s - %s",
		weekStart.Format("January 2"), weekEnd.AddDate(0, 0, -1).Format("January 2, 2006"))

	htmlBody, textBody, err := renderDigest(report)
	if err != nil {
		return fmt.Errorf("render digest: %w", err)
	}
	if err := uc.sender.SendDigest(ctx, uc.recipient, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	if err := uc.ledger.MarkDigestSent(ctx, weekStart, uc.recipient); err != nil {
		uc.logger.Warn("digest_ledger_mark_failed", "week_start", weekStart.Format("2006-01-02"), "error", err)
	}

	uc.logger.Info("digest_sent",
		"week_start", weekStart.Format("2006-01-02"),
		"emails", report.Total,
		"positive", report.Positive,
		"negative", report.Negative,
		"giving_alerts", report.GivingAlerts(),
	)
	return nil
}

func (uc *WeeklyDigestUseCase) buildReport(rows []domain.OutputRow, weekStart, weekEnd time.Time) *DigestReport {
	report := &DigestReport{
		WeekStart: weekStart,
		WeekEnd:   weekEnd.AddDate(0, 0, -1),
		Total:     len(rows),
		SheetURL:  uc.sheetURL,
		Rows:      rows,
	}

	for _, row := range rows {
		switch row.Sentiment {
		case domain.SentimentPositive:
			report.Positive++
		case domain.SentimentNegative:
			report.Negative++
		default:
			report.Neutral++
		}
		if strings.Contains(row.GivingStatus, string(domain.PausedGiving)) {
			report.PausedGiving++
		}
		if strings.Contains(row.GivingStatus, string(domain.RemovedBequest)) {
			report.RemovedBequest++
		}
		if strings.Contains(row.GivingStatus, string(domain.ResumedGiving)) {
			report.ResumedGiving++
		}
		if strings.Contains(row.GivingStatus, string(domain.AddedBequest)) {
			report.AddedBequest++
		}
	}

	report.MajorThemes, report.MinorThemes = extractThemes(rows)
	report.Summary = summaryParagraph(report)
	return report
}

// extractThemes counts theme keyword mentions across the week's bodies
// and splits them into the top three and the long tail.
func extractThemes(rows []domain.OutputRow) (major, minor []ThemeCount) {
	counts := make(map[string]int)
	for _, row := range rows {
		body := strings.ToLower(row.Body)
		for theme, keywords := range themeKeywords {
			for _, kw := range keywords {
				if strings.Contains(body, kw) {
					counts[theme]++
					break
				}
			}
		}
	}
	if len(counts) == 0 {
		return []ThemeCount{{Name: fallbackTheme, Count: len(rows)}}, nil
	}

	all := make([]ThemeCount, 0, len(counts))
	for name, count := range counts {
		all = append(all, ThemeCount{Name: name, Count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Name < all[j].Name
	})

	cut := 3
	if len(all) < cut {
		cut = len(all)
	}
	return all[:cut], all[cut:]
}

func summaryParagraph(r *DigestReport) string {
	var desc string
	switch {
	case r.Positive > r.Negative:
		desc = "predominantly positive"
	case r.Negative > r.Positive:
		desc = "mixed, with some concerns raised"
	default:
		desc = "balanced"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "This week, we received %d alumni emails with %s sentiment. ", r.Total, desc)
	if alerts := r.GivingAlerts(); alerts > 0 {
		fmt.Fprintf(&b, "Important: %d alumni indicated changes to their giving status, requiring follow-up. ", alerts)
	}
	switch {
	case float64(r.Positive) > float64(r.Total)*0.6:
		b.WriteString("The majority of correspondence expressed appreciation and support for the institution. ")
	case float64(r.Negative) > float64(r.Total)*0.3:
		b.WriteString("Several alumni raised concerns that may need attention from the appropriate teams. ")
	}
	return strings.TrimSpace(b.String())
}

func renderDigest(report *DigestReport) (htmlBody, textBody string, err error) {
	var hb bytes.Buffer
	if err := digestHTMLTemplate.Execute(&hb, report); err != nil {
		return "", "", err
	}
	var tb bytes.Buffer
	if err := digestTextTemplate.Execute(&tb, report); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

var digestHTMLTemplate = template.Must(template.New("digest").Parse(`<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
h1 { color: #2c3e50; border-bottom: 3px solid #3498db; padding-bottom: 10px; }
h2 { color: #34495e; margin-top: 30px; }
.summary-box { background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #3498db; }
.stats-list { list-style: none; padding: 0; }
.stats-list li { margin: 12px 0; font-size: 16px; }
.alert-box { background-color: #fff3cd; border-left: 4px solid #ff9800; padding: 15px; margin: 20px 0; border-radius: 5px; }
.themes-list { background-color: #e8f4f8; padding: 20px; border-radius: 8px; margin: 20px 0; }
.link-box { margin-top: 30px; padding: 20px; background-color: #e8f4f8; border-radius: 8px; text-align: center; }
.footer { margin-top: 40px; padding-top: 20px; border-top: 1px solid #ddd; color: #7f8c8d; font-size: 12px; text-align: center; }
</style>
</head>
<body>
<h1>Weekly Alumni Inbox Summary</h1>
<div class="summary-box">
<p><strong>Week of:</strong> {{.WeekStart.Format "January 2"}} - {{.WeekEnd.Format "January 2, 2006"}}</p>
{{if .Total}}<p>{{.Summary}}</p>{{else}}<p>No new alumni feedback emails were processed during this period.</p>{{end}}
</div>
{{if .Total}}
<h2>Email Breakdown</h2>
<ul class="stats-list">
<li><strong>Total:</strong> {{.Total}}</li>
<li><strong>Positive:</strong> {{.Positive}} ({{printf "%.1f" .PositivePct}}%)</li>
<li><strong>Negative:</strong> {{.Negative}} ({{printf "%.1f" .NegativePct}}%)</li>
<li><strong>Neutral:</strong> {{.Neutral}} ({{printf "%.1f" .NeutralPct}}%)</li>
</ul>
{{if .GivingAlerts}}
<div class="alert-box">
<strong>Action Required:</strong> {{.GivingAlerts}} alumni have indicated changes to their giving status
(paused giving: {{.PausedGiving}}, removed bequests: {{.RemovedBequest}}).
Please review the detailed report and follow up accordingly.
</div>
{{end}}
<h2>Themes Observed</h2>
<div class="themes-list">
<ul>
{{range .MajorThemes}}<li><strong>{{.Name}}</strong> ({{.Count}} emails)</li>
{{end}}</ul>
{{if .MinorThemes}}<p>Other topics mentioned:
{{range $i, $t := .MinorThemes}}{{if $i}}, {{end}}{{$t.Name}} ({{$t.Count}}){{end}}.</p>{{end}}
</div>
{{end}}
<div class="link-box">
<p><a href="{{.SheetURL}}">View Detailed Email Log in Google Sheets</a></p>
</div>
<div class="footer">
This is an automated weekly summary from the Alumni Feedback System.
</div>
</body>
</html>
`))

var digestTextTemplate = texttemplate.Must(texttemplate.New("digest_text").Parse(`WEEKLY ALUMNI FEEDBACK SUMMARY
Period: {{.WeekStart.Format "January 2"}} - {{.WeekEnd.Format "January 2, 2006"}}
{{if .Total}}
SUMMARY STATISTICS
==================
Total Emails Processed: {{.Total}}
Positive: {{.Positive}} ({{printf "%.1f" .PositivePct}}%)
Negative: {{.Negative}} ({{printf "%.1f" .NegativePct}}%)
Neutral: {{.Neutral}} ({{printf "%.1f" .NeutralPct}}%)
{{if .GivingAlerts}}
ALERTS:
Paused Giving: {{.PausedGiving}}
Removed Bequests: {{.RemovedBequest}}
{{end}}
DETAILED EMAIL LOG
==================
{{range .Rows}}
Date: {{.ReceivedAt.Format "2006-01-02"}}
From: {{.FirstName}} {{.LastName}} ({{.Address}})
Sentiment: {{.Sentiment}}
Giving Status: {{.GivingStatus}}
Email Text:
{{.Body}}
--------------------------------------------------------------------------------
{{end}}{{else}}
No new alumni feedback emails were processed during this period.
{{end}}
View Full Report: {{.SheetURL}}

---
This is an automated weekly summary from the Alumni Feedback System.
`))
