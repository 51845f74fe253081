// ABOUTME: Character-level TF-IDF similarity over labeled exemplar questions
// ABOUTME: Rebuilt per call from the config snapshot so reloads take effect
package route

import (
	"math"

	"github.com/ecosense/aqroute/internal/models"
)

// classifier scores a question against exemplar questions per target
type classifier struct {
	idf       map[rune]float64
	exemplars []exemplar
}

type exemplar struct {
	target models.RoutingTarget
	vec    map[rune]float64
}

// newClassifier builds the TF-IDF model from labeled exemplar sets.
// Terms are single characters; word segmentation is deliberately avoided
// so the model needs no dictionary.
func newClassifier(structured, general []string) *classifier {
	docs := make([]string, 0, len(structured)+len(general))
	docs = append(docs, structured...)
	docs = append(docs, general...)

	df := make(map[rune]int)
	for _, doc := range docs {
		seen := make(map[rune]bool)
		for _, ch := range doc {
			if !seen[ch] {
				seen[ch] = true
				df[ch]++
			}
		}
	}

	c := &classifier{idf: make(map[rune]float64, len(df))}
	n := float64(len(docs))
	for ch, count := range df {
		c.idf[ch] = math.Log(n/float64(1+count)) + 1
	}

	for _, doc := range structured {
		c.exemplars = append(c.exemplars, exemplar{models.TargetStructuredAPI, c.vectorize(doc)})
	}
	for _, doc := range general {
		c.exemplars = append(c.exemplars, exemplar{models.TargetGeneralQuery, c.vectorize(doc)})
	}
	return c
}

func (c *classifier) vectorize(text string) map[rune]float64 {
	counts := make(map[rune]int)
	total := 0
	for _, ch := range text {
		counts[ch]++
		total++
	}
	vec := make(map[rune]float64, len(counts))
	if total == 0 {
		return vec
	}
	for ch, count := range counts {
		idf, ok := c.idf[ch]
		if !ok {
			continue
		}
		vec[ch] = float64(count) / float64(total) * idf
	}
	return vec
}

// classify returns the best target and its cosine similarity.
// Equal scores prefer the structured path.
func (c *classifier) classify(question string) (models.RoutingTarget, float64) {
	if len(c.exemplars) == 0 {
		return models.TargetStructuredAPI, 0
	}
	qv := c.vectorize(question)

	best := map[models.RoutingTarget]float64{}
	for _, e := range c.exemplars {
		if sim := cosine(qv, e.vec); sim > best[e.target] {
			best[e.target] = sim
		}
	}
	if best[models.TargetStructuredAPI] >= best[models.TargetGeneralQuery] {
		return models.TargetStructuredAPI, best[models.TargetStructuredAPI]
	}
	return models.TargetGeneralQuery, best[models.TargetGeneralQuery]
}

func cosine(a, b map[rune]float64) float64 {
	var dot, na, nb float64
	for ch, av := range a {
		na += av * av
		if bv, ok := b[ch]; ok {
			dot += av * bv
		}
	}
	for _, bv := range b {
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
