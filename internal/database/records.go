package repository

import (
	"SevaFlow/entity"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InsertGrievance stores a freshly minted grievance.
func (m *MongoDB) InsertGrievance(g *entity.Grievance) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	if g.ID == "" {
		g.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
	if g.Status == "" {
		g.Status = entity.GrievancePending
	}

	collection := connection.Database(m.database).Collection(grievancesCollection)
	_, err = collection.InsertOne(m.ctx, g)
	if err != nil {
		return fmt.Errorf("mongodb insert error: %w", err)
	}
	return nil
}

// FindGrievanceByRef looks a grievance up by its citizen-facing reference,
// nil when unknown.
func (m *MongoDB) FindGrievanceByRef(companyID, ref string) (*entity.Grievance, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(grievancesCollection)
	filter := bson.M{
		"company_id":   companyID,
		"grievance_id": ref,
	}

	var g entity.Grievance
	err = collection.FindOne(m.ctx, filter).Decode(&g)
	if err != nil {
		return nil, m.findError(err)
	}
	return &g, nil
}

// InsertAppointment stores a freshly minted appointment.
func (m *MongoDB) InsertAppointment(a *entity.Appointment) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	if a.ID == "" {
		a.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = entity.AppointmentRequested
	}

	collection := connection.Database(m.database).Collection(appointmentsCollection)
	_, err = collection.InsertOne(m.ctx, a)
	if err != nil {
		return fmt.Errorf("mongodb insert error: %w", err)
	}
	return nil
}

// FindAppointmentByRef looks an appointment up by its reference, nil when
// unknown.
func (m *MongoDB) FindAppointmentByRef(companyID, ref string) (*entity.Appointment, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(appointmentsCollection)
	filter := bson.M{
		"company_id":     companyID,
		"appointment_id": ref,
	}

	var a entity.Appointment
	err = collection.FindOne(m.ctx, filter).Decode(&a)
	if err != nil {
		return nil, m.findError(err)
	}
	return &a, nil
}
