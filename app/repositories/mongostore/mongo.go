// Package mongostore implements the post and comment repositories on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blogapi/app/models"
	"blogapi/app/repositories"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Options names the database and collections to use.
type Options struct {
	URL                string
	Database           string
	PostsCollection    string
	CommentsCollection string
	Clock              repositories.Clock
}

type Store struct {
	client   *mongo.Client
	Posts    *PostRepository
	Comments *CommentRepository
}

// Connect dials MongoDB, checks the connection and ensures the indexes.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URL))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(opts.Database)
	posts := db.Collection(opts.PostsCollection)
	comments := db.Collection(opts.CommentsCollection)
	if err := ensureIndexes(ctx, posts, comments); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	// BSON dates hold milliseconds; truncate so returned values match stored ones.
	now := func() time.Time { return clock().Truncate(time.Millisecond) }

	return &Store{
		client:   client,
		Posts:    &PostRepository{posts: posts, now: now},
		Comments: &CommentRepository{comments: comments, now: now},
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func ensureIndexes(ctx context.Context, posts, comments *mongo.Collection) error {
	opts := options.CreateIndexes().SetMaxTime(10 * time.Second)

	_, err := posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}, opts)
	if err != nil {
		return fmt.Errorf("posts: failed to ensure indexes: %w", err)
	}

	_, err = comments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}}},
	}, opts)
	if err != nil {
		return fmt.Errorf("comments: failed to ensure indexes: %w", err)
	}
	return nil
}

type PostRepository struct {
	posts *mongo.Collection
	now   repositories.Clock
}

func (r *PostRepository) Create(ctx context.Context, input models.CreatePostInput, authorID string) (*models.Post, error) {
	post := models.NewPost(uuid.NewString(), input, authorID, r.now())
	if _, err := r.posts.InsertOne(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}
	return post, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.PostNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post %s: %w", id, err)
	}
	return &post, nil
}

func (r *PostRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.posts.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	posts := []*models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	set := bson.M{"updatedAt": r.now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.ImageKey != nil {
		set["imageKey"] = *patch.ImageKey
	}

	after := options.After
	res := r.posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after})
	var post models.Post
	err := res.Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.PostNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update post %s: %w", id, err)
	}
	return &post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return repositories.PostNotFound(id)
	}
	return nil
}

type CommentRepository struct {
	comments *mongo.Collection
	now      repositories.Clock
}

func (r *CommentRepository) Create(ctx context.Context, postID string, input models.CreateCommentInput, authorID string) (*models.Comment, error) {
	comment := models.NewComment(uuid.NewString(), postID, input, authorID, r.now())
	if _, err := r.comments.InsertOne(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}
	return comment, nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.CommentNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment %s: %w", id, err)
	}
	return &comment, nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.comments.Find(ctx, bson.M{"postId": postID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of post %s: %w", postID, err)
	}
	comments := []*models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.comments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete comment %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return repositories.CommentNotFound(id)
	}
	return nil
}

func (r *CommentRepository) DeleteByPost(ctx context.Context, postID string) (int, error) {
	res, err := r.comments.DeleteMany(ctx, bson.M{"postId": postID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments of post %s: %w", postID, err)
	}
	return int(res.DeletedCount), nil
}

var (
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
)
