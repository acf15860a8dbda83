package repository

import (
	"SevaFlow/entity"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindActiveFlowsByCompany returns the tenant's active, non-deleted flows.
func (m *MongoDB) FindActiveFlowsByCompany(companyID string) ([]entity.FlowDefinition, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(flowsCollection)
	filter := bson.M{
		"company_id": companyID,
		"is_active":  true,
		"is_deleted": false,
	}

	cursor, err := collection.Find(m.ctx, filter)
	if err != nil {
		return nil, m.findError(err)
	}
	defer cursor.Close(m.ctx)

	var flows []entity.FlowDefinition
	if err := cursor.All(m.ctx, &flows); err != nil {
		return nil, fmt.Errorf("mongodb decode error: %w", err)
	}
	return flows, nil
}

// FindFlowByID returns one flow scoped to the tenant, nil when absent.
func (m *MongoDB) FindFlowByID(companyID, flowID string) (*entity.FlowDefinition, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(flowsCollection)
	filter := bson.M{
		"_id":        flowID,
		"company_id": companyID,
		"is_deleted": false,
	}

	var flow entity.FlowDefinition
	err = collection.FindOne(m.ctx, filter).Decode(&flow)
	if err != nil {
		return nil, m.findError(err)
	}
	return &flow, nil
}

// ListFlows returns all non-deleted flows of a tenant, newest first.
func (m *MongoDB) ListFlows(companyID string) ([]entity.FlowDefinition, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(flowsCollection)
	filter := bson.M{
		"company_id": companyID,
		"is_deleted": false,
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, m.findError(err)
	}
	defer cursor.Close(m.ctx)

	var flows []entity.FlowDefinition
	if err := cursor.All(m.ctx, &flows); err != nil {
		return nil, fmt.Errorf("mongodb decode error: %w", err)
	}
	return flows, nil
}

// InsertFlow stores a new flow and returns its id.
func (m *MongoDB) InsertFlow(flow *entity.FlowDefinition) (string, error) {
	connection, err := m.connect()
	if err != nil {
		return "", err
	}
	defer m.disconnect(connection)

	if flow.ID == "" {
		flow.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	flow.Version = 1
	flow.CreatedAt = now
	flow.UpdatedAt = now

	collection := connection.Database(m.database).Collection(flowsCollection)
	_, err = collection.InsertOne(m.ctx, flow)
	if err != nil {
		return "", fmt.Errorf("mongodb insert error: %w", err)
	}
	return flow.ID, nil
}

// UpdateFlow replaces an existing flow's definition and bumps its version.
// Running sessions pinned to the old version keep their snapshot semantics
// through the session's flow_version field.
func (m *MongoDB) UpdateFlow(flow *entity.FlowDefinition) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(flowsCollection)
	filter := bson.M{
		"_id":        flow.ID,
		"company_id": flow.CompanyID,
		"is_deleted": false,
	}
	update := bson.M{
		"$set": bson.M{
			"flow_name":           flow.FlowName,
			"flow_type":           flow.FlowType,
			"is_active":           flow.IsActive,
			"start_step_id":       flow.StartStepID,
			"steps":               flow.Steps,
			"triggers":            flow.Triggers,
			"supported_languages": flow.SupportedLanguages,
			"default_language":    flow.DefaultLanguage,
			"settings":            flow.Settings,
			"updated_at":          time.Now(),
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("flow not found")
	}
	return nil
}

// SetFlowActive toggles a flow without touching its definition.
func (m *MongoDB) SetFlowActive(companyID, flowID string, active bool) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(flowsCollection)
	filter := bson.M{
		"_id":        flowID,
		"company_id": companyID,
		"is_deleted": false,
	}
	update := bson.M{"$set": bson.M{
		"is_active":  active,
		"updated_at": time.Now(),
	}}

	res, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("flow not found")
	}
	return nil
}

// SoftDeleteFlow marks a flow deleted. The document stays for audit and
// for sessions still pinned to it.
func (m *MongoDB) SoftDeleteFlow(companyID, flowID string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	now := time.Now()
	collection := connection.Database(m.database).Collection(flowsCollection)
	filter := bson.M{
		"_id":        flowID,
		"company_id": companyID,
		"is_deleted": false,
	}
	update := bson.M{"$set": bson.M{
		"is_deleted": true,
		"is_active":  false,
		"deleted_at": now,
		"updated_at": now,
	}}

	res, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("flow not found")
	}
	return nil
}

// IncrementFlowUsage bumps usage stats when a trigger starts the flow.
func (m *MongoDB) IncrementFlowUsage(flowID string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(flowsCollection)
	filter := bson.M{"_id": flowID}
	update := bson.M{
		"$inc": bson.M{"usage_count": 1},
		"$set": bson.M{"last_used_at": time.Now()},
	}

	_, err = collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	return nil
}
