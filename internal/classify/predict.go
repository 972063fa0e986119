package classify

import "fmt"

// Prediction is the classification result for one hand pose. Probabilities
// carries letter labels only; other labels never appear in it.
type Prediction struct {
	Sign          string             `json:"sign"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`

	// Fallback marks a result selected without the letter restriction
	// because the model's labels contain no letters at all.
	Fallback bool `json:"fallback,omitempty"`
}

// IsLetter reports whether a label is a single uppercase letter A-Z.
func IsLetter(label string) bool {
	return len(label) == 1 && label[0] >= 'A' && label[0] <= 'Z'
}

// LetterLabels returns the labels that are single letters A-Z, in class order.
func LetterLabels(labels []string) []string {
	var letters []string
	for _, label := range labels {
		if IsLetter(label) {
			letters = append(letters, label)
		}
	}
	return letters
}

// SelectLetter picks the predicted sign from a softmax distribution,
// restricted to labels that are letters A-Z. Ties resolve to the lowest
// class index. Confidence is the winner's share of the full distribution,
// not renormalized over the letter subset.
//
// When the labels contain no letters the unrestricted argmax is returned
// with Fallback set so the caller can surface the misconfiguration.
func SelectLetter(probs []float64, labels []string) (*Prediction, error) {
	if len(probs) == 0 {
		return nil, fmt.Errorf("empty probability distribution")
	}
	if len(probs) != len(labels) {
		return nil, fmt.Errorf("got %d probabilities for %d labels", len(probs), len(labels))
	}

	best := -1
	letterProbs := make(map[string]float64)
	for i, label := range labels {
		if !IsLetter(label) {
			continue
		}
		letterProbs[label] = probs[i]
		if best < 0 || probs[i] > probs[best] {
			best = i
		}
	}

	fallback := best < 0
	if fallback {
		for i := range probs {
			if best < 0 || probs[i] > probs[best] {
				best = i
			}
		}
	}

	return &Prediction{
		Sign:          labels[best],
		Confidence:    probs[best],
		Probabilities: letterProbs,
		Fallback:      fallback,
	}, nil
}
