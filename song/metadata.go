package song

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	awssession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"

	"github.com/seejay/notefall/constants"
	"github.com/seejay/notefall/model"
)

// Metadata looks up catalogue metadata (artist, release, year) for up to 10
// song ids at a time. Songs without a catalogue entry are simply absent from
// the result; lookups are best-effort decoration of the local files.
func Metadata(ids []string) (map[string]model.SongMetadata, error) {
	if len(ids) > 10 {
		return nil, fmt.Errorf("metadata lookups are limited to 10 ids, got %v", len(ids))
	}

	res := make(map[string]model.SongMetadata)
	if len(ids) == 0 {
		return res, nil
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, id := range ids {
		keys = append(keys, map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(id)},
		})
	}

	endpoint := constants.GetMetadataEndpoint()
	sess, err := awssession.NewSession(&aws.Config{
		Region:   aws.String("localhost"),
		Endpoint: &endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("creating metadata session: %w", err)
	}

	client := dynamodb.New(sess)
	input := &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			constants.MetadataTable: {Keys: keys},
		},
	}
	dbres, err := client.BatchGetItem(input)
	if err != nil {
		return nil, fmt.Errorf("fetching metadata: %w", err)
	}

	for _, v := range dbres.Responses[constants.MetadataTable] {
		var m model.SongMetadata
		if v["Year"] != nil && v["Year"].N != nil {
			year, _ := strconv.ParseUint(*v["Year"].N, 10, 32)
			m.Year = uint(year)
		}
		if v["Artist"] != nil && v["Artist"].S != nil {
			m.Artist = *v["Artist"].S
		}
		if v["Release"] != nil && v["Release"].S != nil {
			m.Release = *v["Release"].S
		}
		if v["Title"] != nil && v["Title"].S != nil {
			m.Title = *v["Title"].S
		}
		res[*v["PK"].S] = m
	}

	return res, nil
}
