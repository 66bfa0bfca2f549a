package community

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/arnold/daily-challenges-api/internal/cloud"
	"github.com/arnold/daily-challenges-api/internal/models"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	challengesCollection = "community_challenges"
	commentsCollection   = "comments"
	likesCollection      = "likes"
)

type challengeDoc struct {
	SourceChallengeID string    `firestore:"sourceChallengeId"`
	AuthorID          string    `firestore:"authorId"`
	AuthorName        string    `firestore:"authorName"`
	Title             string    `firestore:"title"`
	Description       string    `firestore:"description"`
	Category          string    `firestore:"category"`
	Difficulty        string    `firestore:"difficulty,omitempty"`
	Points            int       `firestore:"points"`
	LikeCount         int       `firestore:"likeCount"`
	CommentCount      int       `firestore:"commentCount"`
	CreatedAt         time.Time `firestore:"createdAt"`
}

type commentDoc struct {
	ChallengeID string    `firestore:"challengeId"`
	UserID      string    `firestore:"userId"`
	AuthorName  string    `firestore:"authorName"`
	Text        string    `firestore:"text"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

type likeDoc struct {
	ChallengeID string    `firestore:"challengeId"`
	UserID      string    `firestore:"userId"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func toChallengeDoc(c *models.CommunityChallenge) challengeDoc {
	doc := challengeDoc{
		SourceChallengeID: c.SourceChallengeID.String(),
		AuthorID:          c.AuthorID.String(),
		AuthorName:        c.AuthorName,
		Title:             c.Title,
		Description:       c.Description,
		Category:          string(c.Category),
		Points:            c.Points,
		LikeCount:         c.LikeCount,
		CommentCount:      c.CommentCount,
		CreatedAt:         c.CreatedAt,
	}
	if c.Difficulty != nil {
		doc.Difficulty = string(*c.Difficulty)
	}
	return doc
}

func fromChallengeSnap(snap *firestore.DocumentSnapshot) (*models.CommunityChallenge, error) {
	var doc challengeDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
	}
	id, err := uuid.Parse(snap.Ref.ID)
	if err != nil {
		return nil, fmt.Errorf("community challenge id %q: %w", snap.Ref.ID, err)
	}
	c := &models.CommunityChallenge{
		ID:           id,
		AuthorName:   doc.AuthorName,
		Title:        doc.Title,
		Description:  doc.Description,
		Category:     models.Category(doc.Category),
		Points:       doc.Points,
		LikeCount:    doc.LikeCount,
		CommentCount: doc.CommentCount,
		CreatedAt:    doc.CreatedAt,
	}
	// Malformed ids decode to uuid.Nil rather than failing the whole feed.
	c.SourceChallengeID, _ = uuid.Parse(doc.SourceChallengeID)
	c.AuthorID, _ = uuid.Parse(doc.AuthorID)
	if doc.Difficulty != "" {
		d := models.Difficulty(doc.Difficulty)
		c.Difficulty = &d
	}
	return c, nil
}

func fromCommentSnap(snap *firestore.DocumentSnapshot) (models.Comment, error) {
	var doc commentDoc
	if err := snap.DataTo(&doc); err != nil {
		return models.Comment{}, fmt.Errorf("decode comment %s: %w", snap.Ref.ID, err)
	}
	c := models.Comment{
		AuthorName: doc.AuthorName,
		Text:       doc.Text,
		CreatedAt:  doc.CreatedAt,
	}
	c.ID, _ = uuid.Parse(snap.Ref.ID)
	c.ChallengeID, _ = uuid.Parse(doc.ChallengeID)
	c.UserID, _ = uuid.Parse(doc.UserID)
	return c, nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func likeID(challengeID, userID uuid.UUID) string {
	return challengeID.String() + "_" + userID.String()
}

// FirestoreStore keeps the community data in Firestore. Counters on the
// challenge document are updated in the same transaction as the comment or
// like that changes them.
type FirestoreStore struct {
	cloud *cloud.Client
	now   func() time.Time
}

func NewFirestoreStore(c *cloud.Client) *FirestoreStore {
	return &FirestoreStore{cloud: c, now: func() time.Time { return time.Now().UTC() }}
}

func (s *FirestoreStore) Publish(ctx context.Context, challenge *models.CommunityChallenge) error {
	fs, err := s.cloud.Firestore()
	if err != nil {
		return err
	}
	if challenge.ID == uuid.Nil {
		challenge.ID = uuid.New()
	}
	if challenge.CreatedAt.IsZero() {
		challenge.CreatedAt = s.now()
	}

	col := fs.Collection(challengesCollection)
	dup := col.Where("sourceChallengeId", "==", challenge.SourceChallengeID.String()).Limit(1)
	return fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(dup).GetAll()
		if err != nil {
			return fmt.Errorf("check published: %w", err)
		}
		if len(existing) > 0 {
			return ErrAlreadyPublished
		}
		return tx.Create(col.Doc(challenge.ID.String()), toChallengeDoc(challenge))
	})
}

func (s *FirestoreStore) List(ctx context.Context, limit, offset int) ([]models.CommunityChallenge, error) {
	fs, err := s.cloud.Firestore()
	if err != nil {
		return nil, err
	}
	snaps, err := fs.Collection(challengesCollection).
		OrderBy("createdAt", firestore.Desc).
		Offset(offset).
		Limit(limit).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list community challenges: %w", err)
	}
	list := make([]models.CommunityChallenge, 0, len(snaps))
	for _, snap := range snaps {
		c, err := fromChallengeSnap(snap)
		if err != nil {
			return nil, err
		}
		list = append(list, *c)
	}
	return list, nil
}

func (s *FirestoreStore) Get(ctx context.Context, id uuid.UUID) (*models.CommunityChallenge, error) {
	fs, err := s.cloud.Firestore()
	if err != nil {
		return nil, err
	}
	snap, err := fs.Collection(challengesCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get community challenge: %w", err)
	}
	return fromChallengeSnap(snap)
}

func (s *FirestoreStore) AddComment(ctx context.Context, comment *models.Comment) error {
	fs, err := s.cloud.Firestore()
	if err != nil {
		return err
	}
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = s.now()
	}

	challengeRef := fs.Collection(challengesCollection).Doc(comment.ChallengeID.String())
	commentRef := fs.Collection(commentsCollection).Doc(comment.ID.String())
	return fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(challengeRef); err != nil {
			if isNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Create(commentRef, commentDoc{
			ChallengeID: comment.ChallengeID.String(),
			UserID:      comment.UserID.String(),
			AuthorName:  comment.AuthorName,
			Text:        comment.Text,
			CreatedAt:   comment.CreatedAt,
		}); err != nil {
			return err
		}
		return tx.Update(challengeRef, []firestore.Update{
			{Path: "commentCount", Value: firestore.Increment(1)},
		})
	})
}

func (s *FirestoreStore) ListComments(ctx context.Context, challengeID uuid.UUID) ([]models.Comment, error) {
	if _, err := s.Get(ctx, challengeID); err != nil {
		return nil, err
	}
	fs, err := s.cloud.Firestore()
	if err != nil {
		return nil, err
	}
	// Sorted here so the query needs no composite index.
	snaps, err := fs.Collection(commentsCollection).
		Where("challengeId", "==", challengeID.String()).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	comments := make([]models.Comment, 0, len(snaps))
	for _, snap := range snaps {
		c, err := fromCommentSnap(snap)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (s *FirestoreStore) DeleteComment(ctx context.Context, challengeID, commentID, userID uuid.UUID) error {
	fs, err := s.cloud.Firestore()
	if err != nil {
		return err
	}
	challengeRef := fs.Collection(challengesCollection).Doc(challengeID.String())
	commentRef := fs.Collection(commentsCollection).Doc(commentID.String())
	return fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(commentRef)
		if err != nil {
			if isNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		comment, err := fromCommentSnap(snap)
		if err != nil {
			return err
		}
		if comment.ChallengeID != challengeID {
			return ErrNotFound
		}
		if comment.UserID != userID {
			return ErrForbidden
		}
		if err := tx.Delete(commentRef); err != nil {
			return err
		}
		return tx.Update(challengeRef, []firestore.Update{
			{Path: "commentCount", Value: firestore.Increment(-1)},
		})
	})
}

func (s *FirestoreStore) ToggleLike(ctx context.Context, challengeID, userID uuid.UUID) (*models.LikeResult, error) {
	fs, err := s.cloud.Firestore()
	if err != nil {
		return nil, err
	}
	challengeRef := fs.Collection(challengesCollection).Doc(challengeID.String())
	likeRef := fs.Collection(likesCollection).Doc(likeID(challengeID, userID))

	result := &models.LikeResult{}
	err = fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		challengeSnap, err := tx.Get(challengeRef)
		if err != nil {
			if isNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		challenge, err := fromChallengeSnap(challengeSnap)
		if err != nil {
			return err
		}

		_, err = tx.Get(likeRef)
		switch {
		case err == nil:
			if err := tx.Delete(likeRef); err != nil {
				return err
			}
			result.Liked = false
			result.LikeCount = max(challenge.LikeCount-1, 0)
			return tx.Update(challengeRef, []firestore.Update{
				{Path: "likeCount", Value: firestore.Increment(-1)},
			})
		case isNotFound(err):
			if err := tx.Create(likeRef, likeDoc{
				ChallengeID: challengeID.String(),
				UserID:      userID.String(),
				CreatedAt:   s.now(),
			}); err != nil {
				return err
			}
			result.Liked = true
			result.LikeCount = challenge.LikeCount + 1
			return tx.Update(challengeRef, []firestore.Update{
				{Path: "likeCount", Value: firestore.Increment(1)},
			})
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
