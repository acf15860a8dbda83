package repository

import (
	"SevaFlow/entity"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindActiveDepartments returns the tenant's active departments sorted by
// name, the order dynamic list steps present them in.
func (m *MongoDB) FindActiveDepartments(companyID string) ([]entity.Department, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(departmentsCollection)
	filter := bson.M{
		"company_id": companyID,
		"is_active":  true,
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, m.findError(err)
	}
	defer cursor.Close(m.ctx)

	var departments []entity.Department
	if err := cursor.All(m.ctx, &departments); err != nil {
		return nil, fmt.Errorf("mongodb decode error: %w", err)
	}
	return departments, nil
}

// FindDepartmentByID returns one department scoped to the tenant, nil when
// absent.
func (m *MongoDB) FindDepartmentByID(companyID, departmentID string) (*entity.Department, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(departmentsCollection)
	filter := bson.M{
		"_id":        departmentID,
		"company_id": companyID,
	}

	var department entity.Department
	err = collection.FindOne(m.ctx, filter).Decode(&department)
	if err != nil {
		return nil, m.findError(err)
	}
	return &department, nil
}
