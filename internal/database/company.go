package repository

import (
	"SevaFlow/entity"

	"go.mongodb.org/mongo-driver/bson"
)

// FindCompanyByID returns one tenant, nil when absent.
func (m *MongoDB) FindCompanyByID(companyID string) (*entity.Company, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(companiesCollection)
	filter := bson.M{"_id": companyID}

	var company entity.Company
	err = collection.FindOne(m.ctx, filter).Decode(&company)
	if err != nil {
		return nil, m.findError(err)
	}
	return &company, nil
}

// FindCompanyByPhoneNumberID maps an inbound webhook's phone number id to
// its tenant, nil when no tenant owns that number.
func (m *MongoDB) FindCompanyByPhoneNumberID(phoneNumberID string) (*entity.Company, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(companiesCollection)
	filter := bson.M{"whatsapp.phone_number_id": phoneNumberID}

	var company entity.Company
	err = collection.FindOne(m.ctx, filter).Decode(&company)
	if err != nil {
		return nil, m.findError(err)
	}
	return &company, nil
}
