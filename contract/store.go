package contract

import (
	"database/sql"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/docflow/docflow/errors"
	"github.com/docflow/docflow/extract"
)

// Store persists contracts, parties and contract documents
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewStore creates a contract store over an opened database
func NewStore(db *sql.DB, logger *zap.SugaredLogger) *Store {
	return &Store{db: db, logger: logger.Named("contract")}
}

// CreateParty inserts a party and returns it with its assigned ID
func (s *Store) CreateParty(p Party) (Party, error) {
	if p.Name == "" {
		return Party{}, errors.Wrap(errors.ErrInvalidRequest, "party name is required")
	}
	if !ValidRole(p.Role) {
		return Party{}, errors.Wrapf(errors.ErrInvalidRequest, "unknown party role %q", p.Role)
	}

	res, err := s.db.Exec(
		`INSERT INTO parties (name, inn, kpp, address, role) VALUES (?, ?, ?, ?, ?)`,
		p.Name, nullable(p.INN), nullable(p.KPP), nullable(p.Address), p.Role,
	)
	if err != nil {
		return Party{}, errors.Wrap(err, "create party")
	}

	p.ID, err = res.LastInsertId()
	if err != nil {
		return Party{}, errors.Wrap(err, "read party id")
	}
	s.logger.Debugw("Party created", "party_id", p.ID, "role", p.Role)
	return p, nil
}

// GetParty retrieves a party by ID
func (s *Store) GetParty(id int64) (Party, error) {
	var p Party
	var inn, kpp, address sql.NullString
	err := s.db.QueryRow(
		`SELECT id, name, inn, kpp, address, role FROM parties WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &inn, &kpp, &address, &p.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return Party{}, errors.Wrapf(errors.ErrNotFound, "party %d", id)
	}
	if err != nil {
		return Party{}, errors.Wrap(err, "get party")
	}
	p.INN, p.KPP, p.Address = inn.String, kpp.String, address.String
	return p, nil
}

// UpdateParty overwrites all mutable fields of an existing party
func (s *Store) UpdateParty(p Party) (Party, error) {
	if !ValidRole(p.Role) {
		return Party{}, errors.Wrapf(errors.ErrInvalidRequest, "unknown party role %q", p.Role)
	}

	res, err := s.db.Exec(
		`UPDATE parties SET name = ?, inn = ?, kpp = ?, address = ?, role = ? WHERE id = ?`,
		p.Name, nullable(p.INN), nullable(p.KPP), nullable(p.Address), p.Role, p.ID,
	)
	if err != nil {
		return Party{}, errors.Wrap(err, "update party")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Party{}, errors.Wrapf(errors.ErrNotFound, "party %d", p.ID)
	}
	return p, nil
}

// DeleteParty removes a party. Parties referenced by a contract cannot
// be deleted while the reference exists.
func (s *Store) DeleteParty(id int64) error {
	res, err := s.db.Exec(`DELETE FROM parties WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete party")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "party %d", id)
	}
	return nil
}

// ListParties returns parties, optionally filtered by role, with
// limit/offset pagination. A zero limit returns up to 100 rows.
func (s *Store) ListParties(role string, limit, offset int) ([]Party, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, name, inn, kpp, address, role FROM parties`
	args := []any{}
	if role != "" {
		query += ` WHERE role = ?`
		args = append(args, role)
	}
	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list parties")
	}
	defer rows.Close()

	parties := []Party{}
	for rows.Next() {
		var p Party
		var inn, kpp, address sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &inn, &kpp, &address, &p.Role); err != nil {
			return nil, errors.Wrap(err, "scan party")
		}
		p.INN, p.KPP, p.Address = inn.String, kpp.String, address.String
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

// CreateContract inserts a contract referencing existing parties
func (s *Store) CreateContract(c Contract) (Contract, error) {
	if c.Number == "" || c.Date == "" {
		return Contract{}, errors.Wrap(errors.ErrInvalidRequest, "contract number and date are required")
	}

	res, err := s.db.Exec(
		`INSERT INTO contracts (number, date, subject, amount, deadline, penalties, customer_id, contractor_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Number, c.Date, nullable(c.Subject), c.Amount, nullable(c.Deadline), nullable(c.Penalties),
		c.CustomerID, c.ContractorID,
	)
	if err != nil {
		return Contract{}, errors.Wrap(err, "create contract")
	}

	c.ID, err = res.LastInsertId()
	if err != nil {
		return Contract{}, errors.Wrap(err, "read contract id")
	}
	s.logger.Infow("Contract registered", "contract_id", c.ID, "number", c.Number)
	return s.GetContract(c.ID)
}

// GetContract retrieves a contract by ID
func (s *Store) GetContract(id int64) (Contract, error) {
	var c Contract
	var subject, deadline, penalties sql.NullString
	var amount sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT id, number, date, subject, amount, deadline, penalties, customer_id, contractor_id, created_at
		 FROM contracts WHERE id = ?`, id,
	).Scan(&c.ID, &c.Number, &c.Date, &subject, &amount, &deadline, &penalties,
		&c.CustomerID, &c.ContractorID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Contract{}, errors.Wrapf(errors.ErrNotFound, "contract %d", id)
	}
	if err != nil {
		return Contract{}, errors.Wrap(err, "get contract")
	}
	c.Subject, c.Deadline, c.Penalties = subject.String, deadline.String, penalties.String
	c.Amount = amount.Float64
	return c, nil
}

// ListContracts returns contracts with limit/offset pagination,
// newest first
func (s *Store) ListContracts(limit, offset int) ([]Contract, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(
		`SELECT id, number, date, subject, amount, deadline, penalties, customer_id, contractor_id, created_at
		 FROM contracts ORDER BY id DESC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list contracts")
	}
	defer rows.Close()

	contracts := []Contract{}
	for rows.Next() {
		var c Contract
		var subject, deadline, penalties sql.NullString
		var amount sql.NullFloat64
		if err := rows.Scan(&c.ID, &c.Number, &c.Date, &subject, &amount, &deadline, &penalties,
			&c.CustomerID, &c.ContractorID, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan contract")
		}
		c.Subject, c.Deadline, c.Penalties = subject.String, deadline.String, penalties.String
		c.Amount = amount.Float64
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// CreateDocument registers a document against an existing contract
func (s *Store) CreateDocument(d Document) (Document, error) {
	if d.DocType == "" || d.FilePath == "" {
		return Document{}, errors.Wrap(errors.ErrInvalidRequest, "document type and file path are required")
	}

	res, err := s.db.Exec(
		`INSERT INTO contract_documents (contract_id, doc_type, file_path, date, description)
		 VALUES (?, ?, ?, ?, ?)`,
		d.ContractID, d.DocType, d.FilePath, nullable(d.Date), nullable(d.Description),
	)
	if err != nil {
		return Document{}, errors.Wrap(err, "create document")
	}

	d.ID, err = res.LastInsertId()
	if err != nil {
		return Document{}, errors.Wrap(err, "read document id")
	}
	return d, nil
}

// ListContractDocuments returns every document registered against one
// contract
func (s *Store) ListContractDocuments(contractID int64) ([]Document, error) {
	rows, err := s.db.Query(
		`SELECT id, contract_id, doc_type, file_path, date, description
		 FROM contract_documents WHERE contract_id = ? ORDER BY id`, contractID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list contract documents")
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// ListDocuments returns documents across all contracts, optionally
// filtered by type, with limit/offset pagination
func (s *Store) ListDocuments(docType string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, contract_id, doc_type, file_path, date, description FROM contract_documents`
	args := []any{}
	if docType != "" {
		query += ` WHERE doc_type = ?`
		args = append(args, docType)
	}
	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list documents")
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// RegisterExtraction persists the outcome of a completed extraction as
// a contract with its two parties and the source document, all in one
// transaction. Fields the extraction could not find are stored empty.
func (s *Store) RegisterExtraction(fields extract.Fields, filePath string) (Contract, error) {
	if fields.Number == "" {
		return Contract{}, errors.Wrap(errors.ErrInvalidRequest, "extraction found no contract number")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Contract{}, errors.Wrap(err, "begin registration")
	}
	defer tx.Rollback()

	customerID, err := insertParty(tx, fields.CustomerName, RoleCustomer)
	if err != nil {
		return Contract{}, err
	}
	contractorID, err := insertParty(tx, fields.ContractorName, RoleContractor)
	if err != nil {
		return Contract{}, err
	}

	res, err := tx.Exec(
		`INSERT INTO contracts (number, date, subject, amount, deadline, penalties, customer_id, contractor_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fields.Number, fields.ContractDate, nullable(fields.Subject),
		parseAmount(fields.AmountIncludingVAT), nullable(fields.Deadline), nullable(fields.Penalties),
		customerID, contractorID,
	)
	if err != nil {
		return Contract{}, errors.Wrap(err, "register contract")
	}
	contractID, err := res.LastInsertId()
	if err != nil {
		return Contract{}, errors.Wrap(err, "read contract id")
	}

	if _, err := tx.Exec(
		`INSERT INTO contract_documents (contract_id, doc_type, file_path, date)
		 VALUES (?, ?, ?, ?)`,
		contractID, DocTypeContract, filePath, nullable(fields.ContractDate),
	); err != nil {
		return Contract{}, errors.Wrap(err, "register contract document")
	}

	if err := tx.Commit(); err != nil {
		return Contract{}, errors.Wrap(err, "commit registration")
	}

	s.logger.Infow("Extraction registered as contract",
		"contract_id", contractID,
		"number", fields.Number,
	)
	return s.GetContract(contractID)
}

func insertParty(tx *sql.Tx, name, role string) (int64, error) {
	if name == "" {
		name = "unknown " + role
	}
	res, err := tx.Exec(`INSERT INTO parties (name, role) VALUES (?, ?)`, name, role)
	if err != nil {
		return 0, errors.Wrapf(err, "register %s", role)
	}
	return res.LastInsertId()
}

func scanDocuments(rows *sql.Rows) ([]Document, error) {
	docs := []Document{}
	for rows.Next() {
		var d Document
		var date, description sql.NullString
		if err := rows.Scan(&d.ID, &d.ContractID, &d.DocType, &d.FilePath, &date, &description); err != nil {
			return nil, errors.Wrap(err, "scan document")
		}
		d.Date, d.Description = date.String, description.String
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// parseAmount converts an extracted money string such as "1500000,00"
// to a float. Unparseable amounts are stored as zero.
func parseAmount(s string) float64 {
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ",", ".")
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return amount
}
