// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/smartbot"
	"github.com/poiesic/smartbot/ai"
	"github.com/poiesic/smartbot/ai/openai"
	"github.com/poiesic/smartbot/corpus"
)

func main() {
	app := &cli.App{
		Name:  "smartbot",
		Usage: "Hybrid retrieval QA assistant with a guided conversation flow",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "train",
				Usage:  "Train a retrieval model from a QA dataset and save the artifact",
				Action: trainCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "dataset",
						Aliases:  []string{"i"},
						Usage:    "Path to the JSON question/answer dataset",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "model",
						Aliases:  []string{"o"},
						Usage:    "Path to write the trained model artifact",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (omit to train without embeddings)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent embedding workers",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of questions to embed per request",
						Value: 32,
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Chat with the assistant on the terminal",
				Action: chatCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "model",
						Aliases: []string{"m"},
						Usage:   "Path to the trained model artifact",
					},
					&cli.StringFlag{
						Name:  "ai-host",
						Usage: "AI service host URL for embeddings and generation",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
					&cli.StringFlag{
						Name:  "generator-model",
						Usage: "Generator model name",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func trainCommand(c *cli.Context) error {
	ctx := context.Background()

	entries, err := corpus.LoadDataset(c.String("dataset"))
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	var embedder ai.Embedder
	if host := c.String("embedding-host"); host != "" {
		configOpts := []ai.ConfigOption{ai.WithEmbeddingHost(host)}
		if model := c.String("embedding-model"); model != "" {
			configOpts = append(configOpts, ai.WithEmbeddingModel(model))
		}
		aiConfig := ai.NewConfig(configOpts...)
		if err := aiConfig.Validate(); err != nil {
			return fmt.Errorf("invalid AI configuration: %w", err)
		}

		embedder, err = openai.NewEmbedder(aiConfig)
		if err != nil {
			return fmt.Errorf("failed to create embedder: %w", err)
		}
	} else {
		fmt.Fprintln(os.Stderr, "No embedding host configured; training without semantic fallback")
	}

	trainerOpts := []corpus.TrainerOption{corpus.WithBatchSize(c.Int("batch-size"))}
	if size := c.Int("pool-size"); size > 0 {
		trainerOpts = append(trainerOpts, corpus.WithPoolSize(size))
	}

	trainer, err := corpus.NewTrainer(embedder, trainerOpts...)
	if err != nil {
		return fmt.Errorf("failed to create trainer: %w", err)
	}

	started := time.Now()
	model, err := trainer.Train(ctx, entries)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	modelPath := c.String("model")
	if err := corpus.SaveModel(modelPath, model); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Trained %d entries in %s\n", model.Len(), time.Since(started).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "Model saved to %s\n", modelPath)
	return nil
}

func chatCommand(c *cli.Context) error {
	ctx := context.Background()

	configOpts := []ai.ConfigOption{ai.WithHost(c.String("ai-host"))}
	if model := c.String("embedding-model"); model != "" {
		configOpts = append(configOpts, ai.WithEmbeddingModel(model))
	}
	if model := c.String("generator-model"); model != "" {
		configOpts = append(configOpts, ai.WithGeneratorModel(model))
	}

	assistant, err := smartbot.NewAssistant(c.String("db"),
		smartbot.WithAIConfig(ai.NewConfig(configOpts...)),
		smartbot.WithModelPath(c.String("model")),
	)
	if err != nil {
		return fmt.Errorf("failed to start assistant: %w", err)
	}
	defer assistant.Close()

	sessionID := fmt.Sprintf("cli-%d", time.Now().UnixNano())
	fmt.Println("Type your message. Say exit, bye or quit to leave.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}

		turn, err := assistant.HandleTurn(ctx, sessionID, scanner.Text())
		if err != nil {
			return fmt.Errorf("turn failed: %w", err)
		}

		fmt.Printf("Chatbot: %s\n", turn.Reply)
		if turn.Terminated {
			break
		}
	}
	return scanner.Err()
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
