package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nexuspay/nexuspay/pkg/domain/project/entities"
	project_out "github.com/nexuspay/nexuspay/pkg/domain/project/ports/out"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	projectsCollection       = "projects"
	projectMembersCollection = "project_members"
)

type ProjectRepository struct {
	db *mongo.Database
}

func NewProjectRepository(db *mongo.Database) project_out.ProjectRepository {
	repo := &ProjectRepository{db: db}
	repo.ensureIndexes()
	return repo
}

func (r *ProjectRepository) ensureIndexes() {
	ctx := context.Background()
	collection := r.db.Collection(projectsCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

func (r *ProjectRepository) Create(ctx context.Context, p *entities.Project) error {
	_, err := r.db.Collection(projectsCollection).InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *entities.Project) error {
	p.Touch()
	_, err := r.db.Collection(projectsCollection).ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Project, error) {
	var p entities.Project
	err := r.db.Collection(projectsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return &p, nil
}

func (r *ProjectRepository) FindBySlug(ctx context.Context, slug string) (*entities.Project, error) {
	var p entities.Project
	err := r.db.Collection(projectsCollection).FindOne(ctx, bson.M{"slug": slug}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project by slug: %w", err)
	}
	return &p, nil
}

func (r *ProjectRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	count, err := r.db.Collection(projectsCollection).CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check slug existence: %w", err)
	}
	return count > 0, nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*entities.Project, int, error) {
	collection := r.db.Collection(projectsCollection)
	filter := bson.M{"owner_id": ownerID}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DEFAULT_PAGE_SIZE
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	defer cursor.Close(ctx)

	var projects []*entities.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, 0, fmt.Errorf("failed to decode projects: %w", err)
	}
	return projects, int(total), nil
}

func (r *ProjectRepository) ListAllActive(ctx context.Context) ([]*entities.Project, error) {
	cursor, err := r.db.Collection(projectsCollection).Find(ctx, bson.M{"status": entities.ProjectStatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to list active projects: %w", err)
	}
	defer cursor.Close(ctx)

	var projects []*entities.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode active projects: %w", err)
	}
	return projects, nil
}

type ProjectMemberRepository struct {
	db *mongo.Database
}

func NewProjectMemberRepository(db *mongo.Database) project_out.ProjectMemberRepository {
	repo := &ProjectMemberRepository{db: db}
	repo.ensureIndexes()
	return repo
}

func (r *ProjectMemberRepository) ensureIndexes() {
	ctx := context.Background()
	collection := r.db.Collection(projectMembersCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

func (r *ProjectMemberRepository) Create(ctx context.Context, m *entities.ProjectMember) error {
	_, err := r.db.Collection(projectMembersCollection).InsertOne(ctx, m)
	if err != nil {
		return fmt.Errorf("failed to create project member: %w", err)
	}
	return nil
}

func (r *ProjectMemberRepository) Update(ctx context.Context, m *entities.ProjectMember) error {
	_, err := r.db.Collection(projectMembersCollection).ReplaceOne(ctx, bson.M{"project_id": m.ProjectID, "user_id": m.UserID}, m)
	if err != nil {
		return fmt.Errorf("failed to update project member: %w", err)
	}
	return nil
}

func (r *ProjectMemberRepository) Find(ctx context.Context, projectID, userID uuid.UUID) (*entities.ProjectMember, error) {
	var m entities.ProjectMember
	err := r.db.Collection(projectMembersCollection).FindOne(ctx, bson.M{"project_id": projectID, "user_id": userID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project member: %w", err)
	}
	return &m, nil
}

func (r *ProjectMemberRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*entities.ProjectMember, error) {
	cursor, err := r.db.Collection(projectMembersCollection).Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	defer cursor.Close(ctx)

	var members []*entities.ProjectMember
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("failed to decode project members: %w", err)
	}
	return members, nil
}

func (r *ProjectMemberRepository) Delete(ctx context.Context, projectID, userID uuid.UUID) error {
	_, err := r.db.Collection(projectMembersCollection).DeleteOne(ctx, bson.M{"project_id": projectID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete project member: %w", err)
	}
	return nil
}
