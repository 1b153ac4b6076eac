package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ytakahashi/todo-sync/internal/models"
)

const (
	todosCollection    = "todos"
	usersCollection    = "users"
	accountsCollection = "accounts"
)

type FirestoreService struct {
	client *firestore.Client
}

var _ Store = (*FirestoreService)(nil)

// NewFirestoreService connects to projectID. FIRESTORE_EMULATOR_HOST is
// honoured by the client library.
func NewFirestoreService(ctx context.Context, projectID, credentialsFile string) (*FirestoreService, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &FirestoreService{
		client: client,
	}, nil
}

func (fs *FirestoreService) Close() error {
	return fs.client.Close()
}

func (fs *FirestoreService) CreateTodo(ctx context.Context, todo models.Todo) (*models.Todo, error) {
	todo.ID = uuid.New().String()

	_, err := fs.client.Collection(todosCollection).Doc(todo.ID).Create(ctx, todo)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return &todo, nil
}

func (fs *FirestoreService) GetTodo(ctx context.Context, id string) (*models.Todo, error) {
	doc, err := fs.client.Collection(todosCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return todoFromDoc(doc)
}

func (fs *FirestoreService) ListTodos(ctx context.Context, ownerID string) ([]models.Todo, error) {
	iter := fs.todosQuery(ownerID).Documents(ctx)
	defer iter.Stop()

	todos := []models.Todo{}
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate todos: %w", err)
		}

		todo, err := todoFromDoc(doc)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}

	return todos, nil
}

func (fs *FirestoreService) UpdateTodo(ctx context.Context, id string, update models.TodoUpdate) error {
	_, err := fs.client.Collection(todosCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "title", Value: update.Title},
		{Path: "description", Value: update.Description},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrTodoNotFound
		}
		return fmt.Errorf("failed to update todo: %w", err)
	}

	return nil
}

func (fs *FirestoreService) DeleteTodo(ctx context.Context, id string) error {
	_, err := fs.client.Collection(todosCollection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrTodoNotFound
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	return nil
}

func (fs *FirestoreService) WatchTodos(ctx context.Context, ownerID string) (*TodoWatch, error) {
	query := fs.todosQuery(ownerID)

	return startTodoWatch(ctx, func(ctx context.Context, emit emitFunc) error {
		snapshots := query.Snapshots(ctx)
		defer snapshots.Stop()

		for {
			snap, err := snapshots.Next()
			if err != nil {
				if errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("failed to receive todo snapshot: %w", err)
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				return fmt.Errorf("failed to read todo snapshot: %w", err)
			}

			todos := make([]models.Todo, 0, len(docs))
			for _, doc := range docs {
				todo, err := todoFromDoc(doc)
				if err != nil {
					return err
				}
				todos = append(todos, *todo)
			}

			if !emit(todos) {
				return nil
			}
		}
	}), nil
}

func (fs *FirestoreService) CreateProfile(ctx context.Context, profile models.UserProfile) error {
	_, err := fs.client.Collection(usersCollection).Doc(profile.UID).Set(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

func (fs *FirestoreService) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	doc, err := fs.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profile models.UserProfile
	if err := doc.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &profile, nil
}

func (fs *FirestoreService) CreateAccount(ctx context.Context, account models.Account) error {
	_, err := fs.client.Collection(accountsCollection).Doc(accountKey(account.Email)).Create(ctx, account)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (fs *FirestoreService) GetAccount(ctx context.Context, email string) (*models.Account, error) {
	doc, err := fs.client.Collection(accountsCollection).Doc(accountKey(email)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	var account models.Account
	if err := doc.DataTo(&account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}

func (fs *FirestoreService) todosQuery(ownerID string) firestore.Query {
	return fs.client.Collection(todosCollection).Where("ownerId", "==", ownerID)
}

func todoFromDoc(doc *firestore.DocumentSnapshot) (*models.Todo, error) {
	var todo models.Todo
	if err := doc.DataTo(&todo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal todo: %w", err)
	}
	todo.ID = doc.Ref.ID

	return &todo, nil
}

// accountKey keeps arbitrary email text out of document paths.
func accountKey(email string) string {
	sum := sha256.Sum256([]byte(NormalizeEmail(email)))
	return hex.EncodeToString(sum[:])
}
