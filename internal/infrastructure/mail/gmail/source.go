// Package gmail adapts the Gmail API to the mail source and digest
// sender ports.
package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
)

// fetchConcurrency bounds parallel message detail fetches to stay under
// the per-user quota.
const fetchConcurrency = 5

const filteredLabelName = "Filtered Out"

type Source struct {
	service *gmail.Service
	query   string
	logger  *slog.Logger

	filteredLabelID string
}

// NewSource builds a Source on an already-authorized HTTP client. The
// query narrows which inbox messages count as inbound feedback.
func NewSource(ctx context.Context, client *http.Client, query string, logger *slog.Logger) (*Source, error) {
	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	if query == "" {
		query = "in:inbox is:unread"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		service: service,
		query:   query,
		logger:  logger,
	}, nil
}

// FetchUnread lists matching messages and loads their full payloads.
// System senders (service accounts, no-reply addresses) are skipped at
// this boundary so the pipeline never sees them.
func (s *Source) FetchUnread(ctx context.Context, max int) ([]domain.Email, error) {
	resp, err := s.service.Users.Messages.List("me").
		Q(s.query).
		MaxResults(int64(max)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if len(resp.Messages) == 0 {
		return nil, nil
	}

	fetched := make([]*gmail.Message, len(resp.Messages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, ref := range resp.Messages {
		g.Go(func() error {
			msg, err := s.service.Users.Messages.Get("me", ref.Id).
				Format("full").
				Context(gctx).
				Do()
			if err != nil {
				return fmt.Errorf("get message %s: %w", ref.Id, err)
			}
			fetched[i] = msg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	emails := make([]domain.Email, 0, len(fetched))
	for _, msg := range fetched {
		email, skip := parseEmail(msg)
		if skip {
			s.logger.Debug("system_sender_skipped", "message_id", msg.Id, "address", email.Address)
			continue
		}
		if isTrivialBody(email.Body) {
			s.logger.Debug("short_body_skipped", "message_id", msg.Id, "address", email.Address)
			continue
		}
		emails = append(emails, email)
	}
	sortOldestFirst(emails)
	return emails, nil
}

// MarkRead clears the UNREAD label in one batch call.
func (s *Source) MarkRead(ctx context.Context, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	err := s.service.Users.Messages.BatchModify("me", &gmail.BatchModifyMessagesRequest{
		Ids:            messageIDs,
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("batch mark read: %w", err)
	}
	return nil
}

// LabelFiltered tags dropped messages so a human can audit the filter
// from the mailbox itself.
func (s *Source) LabelFiltered(ctx context.Context, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	labelID, err := s.ensureFilteredLabel(ctx)
	if err != nil {
		return err
	}
	err = s.service.Users.Messages.BatchModify("me", &gmail.BatchModifyMessagesRequest{
		Ids:         messageIDs,
		AddLabelIds: []string{labelID},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("batch label filtered: %w", err)
	}
	return nil
}

func (s *Source) ensureFilteredLabel(ctx context.Context) (string, error) {
	if s.filteredLabelID != "" {
		return s.filteredLabelID, nil
	}

	resp, err := s.service.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("list labels: %w", err)
	}
	for _, label := range resp.Labels {
		if label.Name == filteredLabelName {
			s.filteredLabelID = label.Id
			return label.Id, nil
		}
	}

	created, err := s.service.Users.Labels.Create("me", &gmail.Label{
		Name:                  filteredLabelName,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create label %q: %w", filteredLabelName, err)
	}
	s.filteredLabelID = created.Id
	return created.Id, nil
}
