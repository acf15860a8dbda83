package repository

import (
	"SevaFlow/entity"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LoadSession returns the citizen's session, nil when none exists.
func (m *MongoDB) LoadSession(companyID, phone string) (*entity.Session, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	filter := bson.M{
		"company_id": companyID,
		"phone":      phone,
	}

	var session entity.Session
	err = collection.FindOne(m.ctx, filter).Decode(&session)
	if err != nil {
		return nil, m.findError(err)
	}
	return &session, nil
}

// PutSession upserts the citizen's session keyed by (company, phone). One
// session per citizen per tenant; starting a new flow replaces the old one.
func (m *MongoDB) PutSession(session *entity.Session) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	if session.ID == "" {
		session.ID = primitive.NewObjectID().Hex()
	}

	collection := connection.Database(m.database).Collection(sessionsCollection)
	filter := bson.M{
		"company_id": session.CompanyID,
		"phone":      session.Phone,
	}
	update := bson.M{"$set": bson.M{
		"flow_id":          session.FlowID,
		"flow_version":     session.FlowVersion,
		"current_step":     session.CurrentStep,
		"status":           session.Status,
		"data":             session.Data,
		"language":         session.Language,
		"retry_count":      session.RetryCount,
		"started_at":       session.StartedAt,
		"last_activity_at": session.LastActivityAt,
		"expires_at":       session.ExpiresAt,
	}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(m.ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("mongodb upsert error: %w", err)
	}
	return nil
}

// AdvanceSession writes the session only if it still sits on expectStep.
// Returns false when another delivery of the same message advanced it
// first; the caller then treats its own work as a duplicate.
func (m *MongoDB) AdvanceSession(session *entity.Session, expectStep string) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	filter := bson.M{
		"company_id":   session.CompanyID,
		"phone":        session.Phone,
		"flow_id":      session.FlowID,
		"current_step": expectStep,
		"status":       entity.SessionActive,
	}
	update := bson.M{"$set": bson.M{
		"current_step":     session.CurrentStep,
		"status":           session.Status,
		"data":             session.Data,
		"language":         session.Language,
		"retry_count":      session.RetryCount,
		"last_activity_at": session.LastActivityAt,
		"expires_at":       session.ExpiresAt,
	}}

	res, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("mongodb update error: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// DeleteSession removes the citizen's session.
func (m *MongoDB) DeleteSession(companyID, phone string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	filter := bson.M{
		"company_id": companyID,
		"phone":      phone,
	}

	_, err = collection.DeleteOne(m.ctx, filter)
	if err != nil {
		return fmt.Errorf("mongodb delete error: %w", err)
	}
	return nil
}
