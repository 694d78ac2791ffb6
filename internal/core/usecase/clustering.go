package usecase

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
	"github.com/advancementhq/feedback-pipeline/internal/core/ports"
	"github.com/advancementhq/feedback-pipeline/internal/core/textsignal"
)

var topicCategories = []string{
	"Leadership change or resignation",
	"Tuition or financial policy change",
	"Campus safety or security issue",
	"Academic program change",
	"Diversity or inclusion concern",
	"Facility or infrastructure issue",
	"Student support services",
	"General donation or giving",
	"Other feedback",
}

const fallbackTopicCategory = "Other feedback"

// defaultClassifyWorkers bounds the per-email classifier fan-out when
// no worker count is configured.
const defaultClassifyWorkers = 4

// TopicClusterer groups a batch of emails by recurring named entities
// and assigns each retained cluster a dominant topic category. Clusters
// are batch-local; nothing persists between runs.
type TopicClusterer struct {
	classifier     ports.Classifier
	minClusterSize int
	workers        int
	logger         *slog.Logger
}

func NewTopicClusterer(classifier ports.Classifier, minClusterSize, workers int, logger *slog.Logger) *TopicClusterer {
	if minClusterSize <= 0 {
		minClusterSize = 5
	}
	if workers <= 0 {
		workers = defaultClassifyWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TopicClusterer{
		classifier:     classifier,
		minClusterSize: minClusterSize,
		workers:        workers,
		logger:         logger,
	}
}

// DetectClusters runs the whole-batch clustering pass. The per-email
// topic classification fans out concurrently, then every result must be
// in before the majority vote.
func (c *TopicClusterer) DetectClusters(ctx context.Context, emails []domain.Email) domain.ClusterResult {
	if len(emails) < c.minClusterSize {
		return domain.EmptyClusterResult(len(emails))
	}

	texts := make([]string, len(emails))
	perEmail := make([][]string, len(emails))
	occurrences := make(map[string]int)
	for i, email := range emails {
		texts[i] = email.FullText()
		for _, entity := range textsignal.ExtractEntities(texts[i]) {
			norm := textsignal.NormalizeEntity(entity)
			if norm == "" {
				continue
			}
			perEmail[i] = append(perEmail[i], norm)
			occurrences[norm]++
		}
	}

	candidates := make([]string, 0, len(occurrences))
	for entity, count := range occurrences {
		if count >= c.minClusterSize {
			candidates = append(candidates, entity)
		}
	}
	if len(candidates) == 0 {
		return domain.EmptyClusterResult(len(emails))
	}

	categories := c.classifyTopics(ctx, texts)

	result := domain.EmptyClusterResult(len(emails))
	for _, entity := range candidates {
		members := c.memberIndices(entity, perEmail, texts)
		if len(members) < c.minClusterSize {
			continue
		}

		cluster := domain.TopicCluster{
			Entity:   entity,
			Category: majorityCategory(members, categories),
			Members:  members,
			Size:     len(members),
		}
		result.Clusters = append(result.Clusters, cluster)

		clusterIdx := len(result.Clusters) - 1
		for _, idx := range members {
			result.Assignments[idx] = clusterIdx
		}
	}
	return result
}

// memberIndices collects emails carrying an entity that normalizes to
// the candidate, with an all-words substring fallback to catch
// extraction misses and typos.
func (c *TopicClusterer) memberIndices(entity string, perEmail [][]string, texts []string) []int {
	entityWords := strings.Fields(strings.ToLower(entity))
	var members []int

	for idx := range texts {
		matched := false
		for _, norm := range perEmail[idx] {
			if norm == entity {
				matched = true
				break
			}
		}
		if !matched {
			lower := strings.ToLower(texts[idx])
			matched = true
			for _, word := range entityWords {
				if !strings.Contains(lower, word) {
					matched = false
					break
				}
			}
		}
		if matched {
			members = append(members, idx)
		}
	}
	return members
}

// classifyTopics returns each email's top topic category. A failed call
// votes with the fallback category rather than aborting the batch.
func (c *TopicClusterer) classifyTopics(ctx context.Context, texts []string) []string {
	categories := make([]string, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, text := range texts {
		g.Go(func() error {
			scores, err := c.classifier.Classify(gctx, text, topicCategories, false)
			if err != nil {
				c.logger.Warn("topic_classify_failed", "email_index", i, "error", err)
				categories[i] = fallbackTopicCategory
				return nil
			}
			top, _ := topLabel(scores)
			if top == "" {
				top = fallbackTopicCategory
			}
			categories[i] = top
			return nil
		})
	}
	// Whole-batch barrier: the majority vote below needs every result.
	_ = g.Wait()

	return categories
}

func majorityCategory(members []int, categories []string) string {
	counts := make(map[string]int)
	for _, idx := range members {
		counts[categories[idx]]++
	}
	best := fallbackTopicCategory
	bestCount := 0
	for category, count := range counts {
		if count > bestCount {
			best = category
			bestCount = count
		}
	}
	return best
}
