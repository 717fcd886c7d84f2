package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/mindhaven/mindhaven/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names, matching the hosted schema one to one.
const (
	colUsers                 = "users"
	colProfiles              = "profiles"
	colMoodEntries           = "mood_entries"
	colMindfulnessActivities = "mindfulness_activities"
	colJournalEntries        = "journal_entries"
	colPositiveThoughts      = "positive_thoughts"
	colGoals                 = "goals"
	colHabits                = "habits"
	colResources             = "resources"
)

// MongoStorage is a struct representing a MongoDB-backed remote table store.
// It provides an interface to perform CRUD operations on the hosted database,
// with every operation filtered by the owning user's id.
type MongoStorage struct {
	client *mongo.Client
	dbName string
}

// NewMongoStorage creates a new instance of MongoStorage.
// This function doesn't establish a connection to the MongoDB server.
// To connect to the server, use the Connect method of the returned MongoStorage instance.
func NewMongoStorage() *MongoStorage {
	return &MongoStorage{}
}

// Connect establishes a connection to the MongoDB server at the given URI and database name.
// Sets up indexes and unique constraints as necessary.
// Returns an error if any issues are encountered.
func (m *MongoStorage) Connect(dbName, uri string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	m.client = client
	m.dbName = dbName

	// Every account needs a unique email; the index also speeds up the
	// sign-in lookup.
	emailIndexModel := mongo.IndexModel{
		Keys: bson.M{
			"email": 1,
		},
		Options: options.Index().SetUnique(true),
	}
	_, err = m.collection(colUsers).Indexes().CreateOne(ctx, emailIndexModel)
	if err != nil {
		return fmt.Errorf("error creating email index: %w", err)
	}

	// Every per-user collection is filtered by user_id on each read and
	// mutation, so each gets the same index. Note mood_entries deliberately
	// carries no unique (user_id, date) constraint: one entry per day is a
	// convention, not a rule the store enforces.
	userIDIndexModel := mongo.IndexModel{
		Keys: bson.M{
			"user_id": 1,
		},
		Options: options.Index(),
	}
	for _, name := range []string{
		colMoodEntries,
		colMindfulnessActivities,
		colJournalEntries,
		colPositiveThoughts,
		colGoals,
		colHabits,
		colResources,
	} {
		_, err = m.collection(name).Indexes().CreateOne(ctx, userIDIndexModel)
		if err != nil {
			return fmt.Errorf("error creating user_id index on %s: %w", name, err)
		}
	}

	return nil
}

// Disconnect closes the connection to the MongoDB server.
// It should be called when the MongoStorage instance is no longer needed.
// Returns an error if the disconnection process fails.
func (m *MongoStorage) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := m.client.Disconnect(ctx)
	if err != nil {
		return fmt.Errorf("error disconnecting from MongoDB: %w", err)
	}

	return nil
}

func (m *MongoStorage) collection(name string) *mongo.Collection {
	return m.client.Database(m.dbName).Collection(name)
}

// newID assigns the ids the hosted schema treats as server-generated.
func newID() string {
	return primitive.NewObjectID().Hex()
}

// rowFilter scopes a mutation to one row of one user.
func rowFilter(id, userID string) bson.M {
	return bson.M{"_id": id, "user_id": userID}
}

// AddUser adds a new account row to the 'users' collection.
// Returns the added user instance and an error if the insert operation fails.
func (m *MongoStorage) AddUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = newID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := m.collection(colUsers).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("an account with the email '%s' already exists", user.Email)
		}
		return nil, err
	}
	return user, nil
}

// FindUserByEmail finds an account row in the 'users' collection by email.
// Returns ErrNotFound if no account with the email exists.
func (m *MongoStorage) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"email": email})
}

// FindUserByID finds an account row in the 'users' collection by id.
// Returns ErrNotFound if no account with the id exists.
func (m *MongoStorage) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id})
}

func (m *MongoStorage) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	user := &models.User{}
	err := m.collection(colUsers).FindOne(ctx, filter).Decode(user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUserPassword replaces the password hash of the account row with the given id.
// Returns ErrNotFound if no account with the id exists.
func (m *MongoStorage) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	result, err := m.collection(colUsers).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password_hash": passwordHash}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindProfile finds the profile row for a user in the 'profiles' collection.
// A missing profile is not an error: the method returns (nil, nil) so the
// caller can distinguish "no profile yet" from a failed query.
func (m *MongoStorage) FindProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile := &models.Profile{}
	err := m.collection(colProfiles).FindOne(ctx, bson.M{"_id": userID}).Decode(profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// UpsertProfile inserts or replaces the profile row keyed by the user id.
// Returns the confirmed row as read back from the database.
func (m *MongoStorage) UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := m.collection(colProfiles).ReplaceOne(ctx, bson.M{"_id": profile.ID}, profile, opts)
	if err != nil {
		return nil, err
	}
	confirmed := &models.Profile{}
	err = m.collection(colProfiles).FindOne(ctx, bson.M{"_id": profile.ID}).Decode(confirmed)
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// ListMoodEntries lists a user's mood entries sorted by date descending.
func (m *MongoStorage) ListMoodEntries(ctx context.Context, userID string) ([]models.MoodEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := m.collection(colMoodEntries).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.MoodEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AddMoodEntry adds a mood entry to the 'mood_entries' collection.
// Returns the confirmed row with its server-assigned id and timestamp.
func (m *MongoStorage) AddMoodEntry(ctx context.Context, entry *models.MoodEntry) (*models.MoodEntry, error) {
	entry.ID = newID()
	entry.CreatedAt = time.Now().UTC()
	_, err := m.collection(colMoodEntries).InsertOne(ctx, entry)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListMindfulnessActivities lists a user's mindfulness activities sorted by creation time descending.
func (m *MongoStorage) ListMindfulnessActivities(ctx context.Context, userID string) ([]models.MindfulnessActivity, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.collection(colMindfulnessActivities).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var activities []models.MindfulnessActivity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// AddMindfulnessActivities adds a batch of mindfulness activities to the
// 'mindfulness_activities' collection. Returns the confirmed rows.
func (m *MongoStorage) AddMindfulnessActivities(ctx context.Context, activities []models.MindfulnessActivity) ([]models.MindfulnessActivity, error) {
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(activities))
	for i := range activities {
		activities[i].ID = newID()
		activities[i].CreatedAt = now
		activities[i].UpdatedAt = now
		docs = append(docs, activities[i])
	}
	_, err := m.collection(colMindfulnessActivities).InsertMany(ctx, docs)
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// UpdateMindfulnessActivity applies a partial update to one activity,
// filtered by both id and owning user id, and returns the confirmed row.
func (m *MongoStorage) UpdateMindfulnessActivity(ctx context.Context, id, userID string, update models.MindfulnessActivityUpdate) (*models.MindfulnessActivity, error) {
	set := bson.M{"updated_at": stampedAt(update.UpdatedAt)}
	setString(set, "name", update.Name)
	setString(set, "activity", update.Activity)
	setString(set, "alarm", update.Alarm)
	setInt(set, "timer", update.Timer)
	setBool(set, "is_completed", update.IsCompleted)
	setBool(set, "is_target", update.IsTarget)
	setBool(set, "is_running", update.IsRunning)
	setInt(set, "time_remaining", update.TimeRemaining)

	confirmed := &models.MindfulnessActivity{}
	err := m.updateAndConfirm(ctx, colMindfulnessActivities, id, userID, bson.M{"$set": set}, confirmed)
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// ListJournalEntries lists a user's journal entries sorted by date descending.
func (m *MongoStorage) ListJournalEntries(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := m.collection(colJournalEntries).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.JournalEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AddJournalEntry adds a journal entry to the 'journal_entries' collection.
// Returns the confirmed row with its server-assigned id and timestamps.
func (m *MongoStorage) AddJournalEntry(ctx context.Context, entry *models.JournalEntry) (*models.JournalEntry, error) {
	entry.ID = newID()
	entry.CreatedAt = time.Now().UTC()
	entry.UpdatedAt = entry.CreatedAt
	_, err := m.collection(colJournalEntries).InsertOne(ctx, entry)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateJournalEntry applies a partial update to one journal entry, filtered
// by both id and owning user id, and returns the confirmed row. Soft deletion
// sets is_deleted and deleted_date; restoration clears both.
func (m *MongoStorage) UpdateJournalEntry(ctx context.Context, id, userID string, update models.EntryUpdate) (*models.JournalEntry, error) {
	confirmed := &models.JournalEntry{}
	err := m.updateAndConfirm(ctx, colJournalEntries, id, userID, entryUpdateDoc(update), confirmed)
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// DeleteJournalEntries permanently deletes the journal entries with the given
// ids, filtered by the owning user id.
func (m *MongoStorage) DeleteJournalEntries(ctx context.Context, userID string, ids []string) error {
	_, err := m.collection(colJournalEntries).DeleteMany(ctx, bson.M{
		"user_id": userID,
		"_id":     bson.M{"$in": ids},
	})
	return err
}

// ListPositiveThoughts lists a user's positive thoughts sorted by date descending.
func (m *MongoStorage) ListPositiveThoughts(ctx context.Context, userID string) ([]models.PositiveThought, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := m.collection(colPositiveThoughts).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var thoughts []models.PositiveThought
	if err := cursor.All(ctx, &thoughts); err != nil {
		return nil, err
	}
	return thoughts, nil
}

// AddPositiveThought adds a positive thought to the 'positive_thoughts' collection.
// Returns the confirmed row with its server-assigned id and timestamps.
func (m *MongoStorage) AddPositiveThought(ctx context.Context, thought *models.PositiveThought) (*models.PositiveThought, error) {
	thought.ID = newID()
	thought.CreatedAt = time.Now().UTC()
	thought.UpdatedAt = thought.CreatedAt
	_, err := m.collection(colPositiveThoughts).InsertOne(ctx, thought)
	if err != nil {
		return nil, err
	}
	return thought, nil
}

// UpdatePositiveThought applies a partial update to one positive thought,
// filtered by both id and owning user id, and returns the confirmed row.
func (m *MongoStorage) UpdatePositiveThought(ctx context.Context, id, userID string, update models.EntryUpdate) (*models.PositiveThought, error) {
	confirmed := &models.PositiveThought{}
	err := m.updateAndConfirm(ctx, colPositiveThoughts, id, userID, entryUpdateDoc(update), confirmed)
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// DeletePositiveThoughts permanently deletes the positive thoughts with the
// given ids, filtered by the owning user id.
func (m *MongoStorage) DeletePositiveThoughts(ctx context.Context, userID string, ids []string) error {
	_, err := m.collection(colPositiveThoughts).DeleteMany(ctx, bson.M{
		"user_id": userID,
		"_id":     bson.M{"$in": ids},
	})
	return err
}

// ListGoals lists a user's goals sorted by creation time descending.
func (m *MongoStorage) ListGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.collection(colGoals).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var goals []models.Goal
	if err := cursor.All(ctx, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// AddGoal adds a goal to the 'goals' collection.
// Returns the confirmed row with its server-assigned id and timestamps.
func (m *MongoStorage) AddGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	goal.ID = newID()
	goal.CreatedAt = time.Now().UTC()
	goal.UpdatedAt = goal.CreatedAt
	_, err := m.collection(colGoals).InsertOne(ctx, goal)
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// UpdateGoal applies a partial update to one goal, filtered by both id and
// owning user id, and returns the confirmed row.
func (m *MongoStorage) UpdateGoal(ctx context.Context, id, userID string, update models.GoalUpdate) (*models.Goal, error) {
	set := bson.M{"updated_at": stampedAt(update.UpdatedAt)}
	setString(set, "name", update.Name)
	setString(set, "category", update.Category)
	setString(set, "deadline", update.Deadline)
	setString(set, "record_date", update.RecordDate)
	setBool(set, "is_completed", update.IsCompleted)

	confirmed := &models.Goal{}
	err := m.updateAndConfirm(ctx, colGoals, id, userID, bson.M{"$set": set}, confirmed)
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// DeleteGoal permanently deletes one goal, filtered by both id and owning user id.
func (m *MongoStorage) DeleteGoal(ctx context.Context, id, userID string) error {
	return m.deleteOne(ctx, colGoals, id, userID)
}

// ListHabits lists a user's habits sorted by creation time descending.
func (m *MongoStorage) ListHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.collection(colHabits).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var habits []models.Habit
	if err := cursor.All(ctx, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// AddHabit adds a habit to the 'habits' collection.
// Returns the confirmed row with its server-assigned id and timestamps.
func (m *MongoStorage) AddHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	habit.ID = newID()
	habit.CreatedAt = time.Now().UTC()
	habit.UpdatedAt = habit.CreatedAt
	_, err := m.collection(colHabits).InsertOne(ctx, habit)
	if err != nil {
		return nil, err
	}
	return habit, nil
}

// UpdateHabit applies a partial update to one habit, filtered by both id and
// owning user id, and returns the confirmed row.
func (m *MongoStorage) UpdateHabit(ctx context.Context, id, userID string, update models.HabitUpdate) (*models.Habit, error) {
	set := bson.M{"updated_at": stampedAt(update.UpdatedAt)}
	setString(set, "name", update.Name)
	setString(set, "time", update.Time)
	setBool(set, "is_completed", update.IsCompleted)
	if update.CompletedDates != nil {
		set["completed_dates"] = *update.CompletedDates
	}

	confirmed := &models.Habit{}
	err := m.updateAndConfirm(ctx, colHabits, id, userID, bson.M{"$set": set}, confirmed)
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// DeleteHabit permanently deletes one habit, filtered by both id and owning user id.
func (m *MongoStorage) DeleteHabit(ctx context.Context, id, userID string) error {
	return m.deleteOne(ctx, colHabits, id, userID)
}

// ListResources lists a user's resources sorted by creation time descending.
func (m *MongoStorage) ListResources(ctx context.Context, userID string) ([]models.Resource, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.collection(colResources).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var resources []models.Resource
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

// AddResource adds a resource to the 'resources' collection.
// Returns the confirmed row with its server-assigned id and timestamps.
func (m *MongoStorage) AddResource(ctx context.Context, resource *models.Resource) (*models.Resource, error) {
	resource.ID = newID()
	resource.CreatedAt = time.Now().UTC()
	resource.UpdatedAt = resource.CreatedAt
	_, err := m.collection(colResources).InsertOne(ctx, resource)
	if err != nil {
		return nil, err
	}
	return resource, nil
}

// AddResources adds a batch of resources to the 'resources' collection.
// Returns the confirmed rows.
func (m *MongoStorage) AddResources(ctx context.Context, resources []models.Resource) ([]models.Resource, error) {
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(resources))
	for i := range resources {
		resources[i].ID = newID()
		resources[i].CreatedAt = now
		resources[i].UpdatedAt = now
		docs = append(docs, resources[i])
	}
	_, err := m.collection(colResources).InsertMany(ctx, docs)
	if err != nil {
		return nil, err
	}
	return resources, nil
}

// UpdateResource applies a partial update to one resource, filtered by both
// id and owning user id, and returns the confirmed row.
func (m *MongoStorage) UpdateResource(ctx context.Context, id, userID string, update models.ResourceUpdate) (*models.Resource, error) {
	set := bson.M{"updated_at": stampedAt(update.UpdatedAt)}
	setString(set, "title", update.Title)
	setString(set, "type", update.Type)
	setString(set, "content", update.Content)
	setString(set, "category", update.Category)

	confirmed := &models.Resource{}
	err := m.updateAndConfirm(ctx, colResources, id, userID, bson.M{"$set": set}, confirmed)
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// DeleteResource permanently deletes one resource, filtered by both id and owning user id.
func (m *MongoStorage) DeleteResource(ctx context.Context, id, userID string) error {
	return m.deleteOne(ctx, colResources, id, userID)
}

// updateAndConfirm performs an update filtered by id and user id, then reads
// the row back so the caller only ever sees the store's confirmed state.
func (m *MongoStorage) updateAndConfirm(ctx context.Context, col, id, userID string, update bson.M, confirmed interface{}) error {
	filter := rowFilter(id, userID)
	result, err := m.collection(col).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return m.collection(col).FindOne(ctx, filter).Decode(confirmed)
}

func (m *MongoStorage) deleteOne(ctx context.Context, col, id, userID string) error {
	result, err := m.collection(col).DeleteOne(ctx, rowFilter(id, userID))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// entryUpdateDoc builds the update document shared by journal entries and
// positive thoughts. Restoration needs $unset for deleted_date, which a $set
// of the zero value would not express.
func entryUpdateDoc(update models.EntryUpdate) bson.M {
	set := bson.M{"updated_at": stampedAt(update.UpdatedAt)}
	setString(set, "title", update.Title)
	setString(set, "content", update.Content)
	setString(set, "date", update.Date)
	setBool(set, "is_deleted", update.IsDeleted)
	setString(set, "deleted_date", update.DeletedDate)

	doc := bson.M{"$set": set}
	if update.ClearDeletedDate {
		doc["$unset"] = bson.M{"deleted_date": ""}
	}
	return doc
}

func stampedAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func setString(set bson.M, key string, value *string) {
	if value != nil {
		set[key] = *value
	}
}

func setInt(set bson.M, key string, value *int) {
	if value != nil {
		set[key] = *value
	}
}

func setBool(set bson.M, key string, value *bool) {
	if value != nil {
		set[key] = *value
	}
}
