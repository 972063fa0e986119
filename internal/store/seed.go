package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// alphabetLessons holds the signing tip and common-mistake note folded into
// each seeded lesson description.
var alphabetLessons = []struct {
	Letter  string
	Tip     string
	Mistake string
}{
	{"A", "Make a fist with thumb alongside", "Don't let thumb stick out too far"},
	{"B", "Flat hand with fingers together, thumb across palm", "Keep fingers straight and together"},
	{"C", "Curve hand to form a 'C' shape", "Don't close the gap completely"},
	{"D", "Index finger up, other fingers touch thumb", "Keep index finger straight"},
	{"E", "All fingers bent down touching thumb", "Curl fingers, don't extend them"},
	{"F", "Index and thumb form circle, other fingers up", "Keep the circle tight"},
	{"G", "Index and thumb point horizontally", "Keep hand sideways, not vertical"},
	{"H", "Index and middle fingers extended sideways", "Keep fingers together and horizontal"},
	{"I", "Pinky finger extended up, others closed", "Keep other fingers folded down"},
	{"J", "Like 'I' but draw a 'J' shape in air", "Remember the motion - it's dynamic"},
	{"K", "Index and middle up, thumb between them", "Thumb should touch middle finger"},
	{"L", "Index up, thumb out (90-degree angle)", "Make a clear 'L' shape"},
	{"M", "Thumb under first three fingers", "Use three fingers, not four"},
	{"N", "Thumb under first two fingers", "Use two fingers, not three"},
	{"O", "All fingers curved into 'O' shape", "Keep fingers touching"},
	{"P", "Like 'K' but pointed down", "Remember the downward angle"},
	{"Q", "Like 'G' but pointed down", "Keep thumb and index touching"},
	{"R", "Cross index over middle finger", "Don't separate the fingers"},
	{"S", "Fist with thumb over fingers", "Thumb goes in front, not side"},
	{"T", "Thumb between index and middle", "Keep thumb tucked in"},
	{"U", "Index and middle fingers up together", "Keep fingers touching"},
	{"V", "Index and middle form 'V' shape", "Spread fingers to make clear 'V'"},
	{"W", "Three fingers up (index, middle, ring)", "Keep all three fingers extended"},
	{"X", "Index finger bent into hook shape", "Bend only the index finger"},
	{"Y", "Thumb and pinky extended out", "Keep other fingers folded"},
	{"Z", "Draw 'Z' shape with index finger", "Remember the motion - it's dynamic"},
}

// SeedAlphabet inserts the 26 alphabet lessons in a single transaction,
// skipping letters that already exist. It returns the number of lessons created.
func (r *LessonRepository) SeedAlphabet() (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO lessons (title, description, category, video_url, difficulty, sign_name)
		 VALUES (?, ?, 'alphabet', ?, 'beginner', ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	created := 0
	for _, seed := range alphabetLessons {
		var id int64
		err := tx.QueryRow(
			`SELECT id FROM lessons WHERE sign_name = ? AND category = 'alphabet'`,
			seed.Letter,
		).Scan(&id)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}

		title := fmt.Sprintf("Letter %s", seed.Letter)
		description := fmt.Sprintf(
			"Learn how to sign the letter '%s' in American Sign Language. %s. Common mistake: %s.",
			seed.Letter, seed.Tip, seed.Mistake,
		)
		videoURL := "https://www.startasl.com/american-sign-language-alphabet/_" + strings.ToLower(seed.Letter)

		if _, err := stmt.Exec(title, description, videoURL, seed.Letter); err != nil {
			return 0, err
		}
		created++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return created, nil
}
