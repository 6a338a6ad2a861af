package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-accounts-api/internal/domain"
)

// AccountRepo stores accounts in one table and reserves each email address in
// a second table keyed by email. Both are written in a single transaction so a
// given email belongs to at most one account.
type AccountRepo struct {
	client      API
	tableName   string
	emailsTable string
}

func NewAccountRepo(client API, tableName, emailsTable string) *AccountRepo {
	return &AccountRepo{client: client, tableName: tableName, emailsTable: emailsTable}
}

type emailLock struct {
	Email     string `dynamodbav:"email"`
	AccountID string `dynamodbav:"account_id"`
}

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	lock, err := attributevalue.MarshalMap(emailLock{Email: a.Email, AccountID: a.AccountID})
	if err != nil {
		return fmt.Errorf("marshal email lock: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(account_id)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.emailsTable),
				Item:                lock,
				ConditionExpression: aws.String("attribute_not_exists(email)"),
			}},
		},
	})
	if reasons := canceledAt(err); reasons != nil {
		if conditionFailedAt(reasons, 1) {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		if conditionFailedAt(reasons, 0) {
			return fmt.Errorf("account id already exists: %w", domain.ErrConflict)
		}
	}
	return err
}

func (r *AccountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldAccountID, accountID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, notFound("account")
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByEmail resolves the email reservation and then loads the account.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.emailsTable),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, notFound("account")
	}
	var lock emailLock
	if err := attributevalue.UnmarshalMap(out.Item, &lock); err != nil {
		return nil, err
	}
	return r.Get(ctx, lock.AccountID)
}

// ListNames scans the whole table projecting only id and name.
func (r *AccountRepo) ListNames(ctx context.Context) ([]domain.AccountName, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		ProjectionExpression:     aws.String("#id, #n"),
		ExpressionAttributeNames: map[string]string{"#id": fieldAccountID, "#n": fieldName},
	})
	names := []domain.AccountName{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.AccountName
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		names = append(names, batch...)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].AccountID < names[j].AccountID })
	return names, nil
}

// Update applies a partial update. A changed email moves the reservation in the
// same transaction as the account write.
func (r *AccountRepo) Update(ctx context.Context, accountID string, updates map[string]interface{}) error {
	newEmail, changesEmail := updates[domain.FieldEmail].(string)
	if !changesEmail {
		return r.updateItem(ctx, accountID, updates)
	}
	cur, err := r.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if cur.Email == newEmail {
		return r.updateItem(ctx, accountID, updates)
	}

	ue, err := r.expr(updates)
	if err != nil {
		return err
	}
	ue.Names["#email"] = fieldEmail
	ue.Values[":prev"] = &types.AttributeValueMemberS{Value: cur.Email}
	lock, err := attributevalue.MarshalMap(emailLock{Email: newEmail, AccountID: accountID})
	if err != nil {
		return fmt.Errorf("marshal email lock: %w", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:                 aws.String(r.tableName),
				Key:                       strKey(fieldAccountID, accountID),
				UpdateExpression:          aws.String(ue.Expr),
				ConditionExpression:       aws.String("attribute_exists(account_id) AND #email = :prev"),
				ExpressionAttributeNames:  ue.Names,
				ExpressionAttributeValues: ue.Values,
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.emailsTable),
				Item:                lock,
				ConditionExpression: aws.String("attribute_not_exists(email)"),
			}},
			{Delete: &types.Delete{
				TableName:           aws.String(r.emailsTable),
				Key:                 strKey(fieldEmail, cur.Email),
				ConditionExpression: aws.String("account_id = :id"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":id": &types.AttributeValueMemberS{Value: accountID},
				},
			}},
		},
	})
	if reasons := canceledAt(err); reasons != nil {
		switch {
		case conditionFailedAt(reasons, 1):
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		case conditionFailedAt(reasons, 0), conditionFailedAt(reasons, 2):
			return fmt.Errorf("account changed concurrently: %w", domain.ErrConflict)
		}
	}
	return err
}

// Delete removes the account and releases its email reservation.
func (r *AccountRepo) Delete(ctx context.Context, accountID string) error {
	cur, err := r.Get(ctx, accountID)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:           aws.String(r.tableName),
				Key:                 strKey(fieldAccountID, accountID),
				ConditionExpression: aws.String("attribute_exists(account_id)"),
			}},
			{Delete: &types.Delete{
				TableName: aws.String(r.emailsTable),
				Key:       strKey(fieldEmail, cur.Email),
			}},
		},
	})
	if reasons := canceledAt(err); conditionFailedAt(reasons, 0) {
		return notFound("account")
	}
	return err
}

func (r *AccountRepo) updateItem(ctx context.Context, accountID string, updates map[string]interface{}) error {
	ue, err := r.expr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldAccountID, accountID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(account_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return notFound("account")
	}
	return err
}

func (r *AccountRepo) expr(updates map[string]interface{}) (*updateExpr, error) {
	stamped := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		stamped[k] = v
	}
	stamped[fieldUpdatedAt] = time.Now().UTC()
	return buildUpdateExpr(stamped)
}
