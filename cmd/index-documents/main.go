// Command index-documents seeds a search index with briefing documents
// generated from the built-in weather and news functions, then triggers
// the indexer and waits for it to finish. Files from DOCUMENTS_DIR, when
// set, are uploaded alongside the generated briefings.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	skybrief "github.com/skybrief/skybrief-golang"
)

const (
	indexerPollInterval = 5 * time.Second
	indexerPollTimeout  = 5 * time.Minute
)

var (
	briefingCities = []string{"Seattle", "Tokyo", "London", "New York", "Paris"}
	briefingTopics = []string{"technology", "business", "weather", "sports"}
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	indexName := os.Getenv("SEARCH_INDEX_NAME")
	if indexName == "" {
		log.Error("SEARCH_INDEX_NAME environment variable is required")
		os.Exit(1)
	}

	client, err := skybrief.NewClient(
		os.Getenv("SKYBRIEF_API_KEY"),
		os.Getenv("SKYBRIEF_PROJECT_ENDPOINT"),
		0,
		0,
	)
	if err != nil {
		log.WithError(err).Error("create client")
		os.Exit(1)
	}
	defer client.Close()

	ctx := context.Background()

	if _, err := client.Search.CreateIndexWithContext(ctx, indexName); err != nil {
		// The index usually exists already on repeat runs.
		log.WithError(err).WithField("index", indexName).Warn("create index")
	} else {
		log.WithField("index", indexName).Info("index created")
	}

	uploaded := 0
	upload := func(doc skybrief.DocumentUpload, source string) error {
		result, err := client.Search.UploadDocumentWithContext(ctx, indexName, doc)
		if err != nil {
			log.WithError(err).WithField("source", source).Error("upload document")
			return err
		}
		log.WithFields(logrus.Fields{
			"source":      source,
			"document_id": result.DocumentID,
		}).Info("document uploaded")
		uploaded++
		return nil
	}

	for _, city := range briefingCities {
		body, err := weatherBriefing(ctx, city)
		if err != nil {
			log.WithError(err).WithField("city", city).Error("generate weather briefing")
			os.Exit(1)
		}
		name := fmt.Sprintf("weather-%s.md", slug(city))
		if err := upload(skybrief.DocumentUpload{
			Reader:   strings.NewReader(body),
			Filename: name,
			MimeType: "text/markdown",
		}, name); err != nil {
			os.Exit(1)
		}
	}
	for _, topic := range briefingTopics {
		body, err := newsBriefing(ctx, topic)
		if err != nil {
			log.WithError(err).WithField("topic", topic).Error("generate news briefing")
			os.Exit(1)
		}
		name := fmt.Sprintf("news-%s.md", slug(topic))
		if err := upload(skybrief.DocumentUpload{
			Reader:   strings.NewReader(body),
			Filename: name,
			MimeType: "text/markdown",
		}, name); err != nil {
			os.Exit(1)
		}
	}

	if docsDir := os.Getenv("DOCUMENTS_DIR"); docsDir != "" {
		err := filepath.WalkDir(docsDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
				return nil
			}
			return upload(skybrief.DocumentUpload{Path: path}, path)
		})
		if err != nil {
			log.WithError(err).WithField("dir", docsDir).Error("walk documents")
			os.Exit(1)
		}
	}

	log.WithFields(logrus.Fields{"index": indexName, "documents": uploaded}).Info("uploads complete")

	if _, err := client.Search.RunIndexerWithContext(ctx, indexName); err != nil {
		log.WithError(err).Error("run indexer")
		os.Exit(1)
	}
	log.WithField("index", indexName).Info("indexer started")

	status, err := waitForIndexer(ctx, client, indexName)
	if err != nil {
		log.WithError(err).Error("wait for indexer")
		os.Exit(1)
	}
	if strings.EqualFold(status.Status, "failed") {
		entry := log.WithField("index", indexName)
		if status.FailureReason != nil {
			entry = entry.WithField("reason", *status.FailureReason)
		}
		entry.Error("indexer failed")
		os.Exit(1)
	}

	log.WithFields(logrus.Fields{
		"index":         indexName,
		"items_indexed": status.ItemsIndexed,
		"items_failed":  status.ItemsFailed,
	}).Info("indexing complete")
}

func weatherBriefing(ctx context.Context, city string) (string, error) {
	payload, err := skybrief.GetWeather(ctx, map[string]any{"location": city})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("# Weather briefing: %s\n\n```json\n%s\n```\n", city, payload), nil
}

func newsBriefing(ctx context.Context, topic string) (string, error) {
	payload, err := skybrief.GetNewsArticles(ctx, map[string]any{"topic": topic})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("# News briefing: %s\n\n```json\n%s\n```\n", topic, payload), nil
}

func slug(v string) string {
	return strings.ReplaceAll(strings.ToLower(v), " ", "-")
}

func waitForIndexer(ctx context.Context, client *skybrief.Client, indexName string) (skybrief.IndexerStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, indexerPollTimeout)
	defer cancel()

	ticker := time.NewTicker(indexerPollInterval)
	defer ticker.Stop()

	for {
		status, err := client.Search.IndexerStatusWithContext(ctx, indexName)
		if err != nil {
			return skybrief.IndexerStatus{}, err
		}
		switch strings.ToLower(status.Status) {
		case "succeeded", "failed":
			return status, nil
		}
		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-ticker.C:
		}
	}
}
