// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"scratch/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers     int
	NumScratches int
	ShouldClean  bool
	// DryRun generates the data without writing it, for sizing runs.
	DryRun bool
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d scratches...", opts.NumUsers, opts.NumScratches)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users := GenerateUsers(opts.NumUsers)
	if !opts.DryRun {
		if err := db.CreateInBatches(users, 100).Error; err != nil {
			return fmt.Errorf("failed to create users: %w", err)
		}
	}
	log.Printf("%d test users created", len(users))

	var scratches []*models.Scratch
	if opts.DryRun {
		scratches = GenerateScratches(users, opts.NumScratches)
	} else {
		var err error
		// One at a time so replies and reshares reference real earlier rows.
		scratches, err = createScratches(db, users, opts.NumScratches)
		if err != nil {
			return err
		}
	}
	log.Printf("%d scratches created", len(scratches))

	if !opts.DryRun {
		follows := generateFollows(users)
		if len(follows) > 0 {
			if err := db.CreateInBatches(follows, 100).Error; err != nil {
				return fmt.Errorf("failed to create follows: %w", err)
			}
		}
		log.Printf("%d follow edges created", len(follows))

		likes := generateLikes(users, scratches)
		if len(likes) > 0 {
			if err := db.CreateInBatches(likes, 100).Error; err != nil {
				return fmt.Errorf("failed to create likes: %w", err)
			}
		}
		log.Printf("%d likes created", len(likes))
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE likes, bookmarks, follows, scratches, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

// GenerateUsers builds n users with valid usernames and a shared known
// password ("Seeded1pass") so seeded accounts can be logged into.
func GenerateUsers(n int) []*models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("Seeded1pass"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	users := make([]*models.User, 0, n)
	seen := make(map[string]bool, n)
	for len(users) < n {
		username := generateUsername()
		if seen[username] {
			continue
		}
		seen[username] = true
		users = append(users, &models.User{
			Username:    username,
			Name:        gofakeit.Name(),
			Password:    string(hash),
			Description: gofakeit.Sentence(8),
		})
	}
	return users
}

// generateUsername produces a name matching the 6-25 alphanumeric rule.
func generateUsername() string {
	base := strings.ToLower(gofakeit.FirstName() + gofakeit.LastName())
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, base)
	base += fmt.Sprintf("%d", gofakeit.Number(10, 999))
	for len(base) < 6 {
		base += "0"
	}
	if len(base) > 25 {
		base = base[:25]
	}
	return base
}

// createScratches inserts n scratches, wiring a share of them as replies,
// quotes and direct reshares of rows created earlier in the same run.
func createScratches(db *gorm.DB, users []*models.User, n int) ([]*models.Scratch, error) {
	if len(users) == 0 {
		return nil, nil
	}

	scratches := make([]*models.Scratch, 0, n)
	for i := 0; i < n; i++ {
		author := users[rand.Intn(len(users))]
		scratch := &models.Scratch{
			AuthorID: author.ID,
			Body:     generateBody(),
		}

		if len(scratches) > 0 {
			switch roll := rand.Intn(10); {
			case roll < 3: // reply
				scratch.ParentID = &scratches[rand.Intn(len(scratches))].ID
			case roll < 4: // quote
				if target := pickReshareTarget(scratches); target != nil {
					scratch.RescratchedID = &target.ID
				}
			case roll < 5: // direct reshare
				if target := pickReshareTarget(scratches); target != nil {
					scratch.RescratchedID = &target.ID
					scratch.Body = ""
				}
			}
		}
		if err := db.Create(scratch).Error; err != nil {
			return nil, fmt.Errorf("failed to create scratch: %w", err)
		}
		scratches = append(scratches, scratch)
	}
	return scratches, nil
}

// GenerateScratches builds n scratches without writing them, for dry runs.
// Reference ids are positional and not valid database ids.
func GenerateScratches(users []*models.User, n int) []*models.Scratch {
	if len(users) == 0 {
		return nil
	}

	scratches := make([]*models.Scratch, 0, n)
	for i := 0; i < n; i++ {
		author := users[rand.Intn(len(users))]
		scratch := &models.Scratch{
			AuthorID: author.ID,
			Body:     generateBody(),
		}

		if len(scratches) > 0 {
			switch roll := rand.Intn(10); {
			case roll < 3: // reply
				scratch.ParentID = &scratches[rand.Intn(len(scratches))].ID
			case roll < 4: // quote
				if target := pickReshareTarget(scratches); target != nil {
					scratch.RescratchedID = &target.ID
				}
			case roll < 5: // direct reshare
				if target := pickReshareTarget(scratches); target != nil {
					scratch.RescratchedID = &target.ID
					scratch.Body = ""
				}
			}
		}
		scratches = append(scratches, scratch)
	}
	return scratches
}

// pickReshareTarget picks a random scratch that has its own content, since a
// contentless direct reshare cannot itself be reshared. Gives up after a few
// tries rather than scanning the whole slice.
func pickReshareTarget(scratches []*models.Scratch) *models.Scratch {
	for i := 0; i < 8; i++ {
		candidate := scratches[rand.Intn(len(scratches))]
		if candidate.HasContent() {
			return candidate
		}
	}
	return nil
}

func generateBody() string {
	body := gofakeit.Sentence(gofakeit.Number(4, 20))
	if len(body) > 280 {
		body = body[:280]
	}
	return body
}

func generateFollows(users []*models.User) []*models.Follow {
	var follows []*models.Follow
	seen := make(map[[2]uint]bool)
	for _, follower := range users {
		for i := 0; i < rand.Intn(5); i++ {
			followed := users[rand.Intn(len(users))]
			if followed.ID == follower.ID {
				continue
			}
			key := [2]uint{follower.ID, followed.ID}
			if seen[key] {
				continue
			}
			seen[key] = true
			follows = append(follows, &models.Follow{
				FollowerID: follower.ID,
				FollowedID: followed.ID,
			})
		}
	}
	return follows
}

func generateLikes(users []*models.User, scratches []*models.Scratch) []*models.Like {
	var likes []*models.Like
	seen := make(map[[2]uint]bool)
	for _, user := range users {
		for i := 0; i < rand.Intn(8); i++ {
			if len(scratches) == 0 {
				break
			}
			scratch := scratches[rand.Intn(len(scratches))]
			key := [2]uint{user.ID, scratch.ID}
			if seen[key] {
				continue
			}
			seen[key] = true
			likes = append(likes, &models.Like{
				UserID:    user.ID,
				ScratchID: scratch.ID,
			})
		}
	}
	return likes
}
