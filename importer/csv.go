// Package importer loads recipes in bulk: the built-in samples and the Indian
// food dataset CSV.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recipeportal/db"
	"recipeportal/models"
)

// Dataset columns.
const (
	colName            = "TranslatedRecipeName"
	colIngredients     = "TranslatedIngredients"
	colCleanIngredient = "Cleaned-Ingredients"
	colInstructions    = "TranslatedInstructions"
	colTotalTime       = "TotalTimeInMins"
	colCuisine         = "Cuisine"
	colImage           = "image-url"
	colURL             = "URL"
	colIngredientCount = "Ingredient-count"
)

const (
	BatchSize          = 100
	defaultTotalTime   = 30
	maxDescription     = 150
	minInstructionSize = 10
	importSource       = "manual"
	importUserName     = "Recipe Database"
	untitled           = "Untitled Recipe"
)

var instructionBreak = regexp.MustCompile(`\.\s+|\n+`)

// Inserter stores a batch and reports how many documents were written.
type Inserter interface {
	InsertMany(ctx context.Context, recipes []models.Recipe) (int, error)
}

type Result struct {
	Rows     int
	Skipped  int
	Inserted int
	Failed   int
}

// ReadCSV converts every usable row of the dataset. Rows without a title or
// without ingredients are counted in Result.Skipped.
func ReadCSV(r io.Reader, now time.Time) ([]models.Recipe, Result, error) {
	var (
		recipes []models.Recipe
		res     Result
	)
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, res, fmt.Errorf("importer: read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return recipes, res, fmt.Errorf("importer: read row %d: %w", res.Rows+1, err)
		}
		res.Rows++
		row := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		recipe, ok := RecipeFromRow(row, now)
		if !ok {
			res.Skipped++
			continue
		}
		recipes = append(recipes, recipe)
	}
	return recipes, res, nil
}

// RecipeFromRow maps one dataset row. It reports false when the row has no
// ingredients; a row without a name is titled "Untitled Recipe".
func RecipeFromRow(col func(string) string, now time.Time) (models.Recipe, bool) {
	rawIngredients := col(colIngredients)
	if rawIngredients == "" {
		rawIngredients = col(colCleanIngredient)
	}
	ingredients := splitIngredients(rawIngredients)
	instructions := splitInstructions(col(colInstructions))
	if len(ingredients) == 0 {
		return models.Recipe{}, false
	}
	title := col(colName)
	if title == "" {
		title = untitled
	}

	rawTotal, _ := leadingInt(col(colTotalTime))
	total := rawTotal
	if total == 0 {
		total = defaultTotalTime
	}

	cuisine := col(colCuisine)
	image := col(colImage)
	if !strings.HasPrefix(image, "http") {
		image = models.DefaultImage
	}
	totalText := col(colTotalTime)
	if totalText == "" {
		totalText = strconv.Itoa(defaultTotalTime)
	}
	count := col(colIngredientCount)
	if count == "" {
		count = strconv.Itoa(len(ingredients))
	}

	recipe := models.Recipe{
		Title:        title,
		Image:        image,
		Description:  describe(instructions, ingredients, cuisine),
		Ingredients:  ingredients,
		Instructions: instructions,
		Tips:         fmt.Sprintf("Total time: %s minutes. Ingredient count: %s", totalText, count),
		PrepTime:     fmt.Sprintf("%d mins", roundHalfUp(float64(total)*0.3)),
		CookTime:     fmt.Sprintf("%d mins", roundHalfUp(float64(total)*0.7)),
		Servings:     models.DefaultServings,
		Difficulty:   difficulty(rawTotal),
		Cuisine:      cuisine,
		DietaryType:  models.DietaryVeg,
		Source:       importSource,
		SourceURL:    col(colURL),
		UserName:     importUserName,
		CreatedAt:    now,
	}
	if recipe.Cuisine == "" {
		recipe.Cuisine = models.CuisineGlobal
	}
	recipe.ApplyDefaults(now)
	return recipe, true
}

func splitIngredients(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitInstructions breaks the text into sentences, drops fragments of ten
// characters or fewer and ends each step with a period.
func splitInstructions(s string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	for _, part := range instructionBreak.Split(s, -1) {
		part = strings.TrimSpace(part)
		if utf8.RuneCountInString(part) <= minInstructionSize {
			continue
		}
		if !strings.HasSuffix(part, ".") {
			part += "."
		}
		out = append(out, part)
	}
	return out
}

func describe(instructions, ingredients []string, cuisine string) string {
	if len(instructions) > 0 {
		first := []rune(instructions[0])
		if len(first) > maxDescription {
			return string(first[:maxDescription]) + "..."
		}
		return string(first)
	}
	if cuisine == "" {
		cuisine = "traditional"
	}
	return fmt.Sprintf("A delicious %s recipe featuring %s.", cuisine, strings.Join(ingredients[:min(3, len(ingredients))], ", "))
}

func difficulty(totalMins int) string {
	switch {
	case totalMins > 60:
		return "Hard"
	case totalMins > 30:
		return "Medium"
	default:
		return "Easy"
	}
}

var leadingDigits = regexp.MustCompile(`^\s*([+-]?\d+)`)

func leadingInt(s string) (int, bool) {
	m := leadingDigits.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Import inserts recipes in unordered batches of BatchSize, a few batches at
// a time. A failed batch is logged and counted; the others still go in.
// res carries the row counts of ReadCSV and gets the insert counts added.
func Import(ctx context.Context, store Inserter, recipes []models.Recipe, res Result, concurrency int, log *zap.Logger) (Result, error) {
	var mu sync.Mutex
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(max(concurrency, 1))

	for i, batch := range db.Batches(recipes, BatchSize) {
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := store.InsertMany(ctx, batch)

			mu.Lock()
			res.Inserted += n
			res.Failed += len(batch) - n
			mu.Unlock()

			if err != nil {
				log.Warn("batch not fully inserted",
					zap.Int("batch", i+1),
					zap.Int("inserted", n),
					zap.Int("failed", len(batch)-n),
					zap.Error(err),
				)
				return nil
			}
			log.Debug("batch inserted", zap.Int("batch", i+1), zap.Int("inserted", n))
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return res, fmt.Errorf("importer: insert batches: %w", err)
	}
	return res, nil
}
