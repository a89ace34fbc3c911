package aws

import (
	"context"
	"os"
	"sort"
	"strings"

	"webbot/file-api/internal/service"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// TextractClient runs documents through AWS Textract and turns the block
// soup into raw text plus tabular datasets. Any internal failure degrades
// to empty results, the orchestrator never sees an error from analysis.
type TextractClient struct {
	C *textract.Client

	// Optional column-name filter applied to extracted tables
	columns []string
}

func NewTextract() (*TextractClient, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("aws.access_key"),
			viper.GetString("aws.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := textract.NewFromConfig(cfg, func(o *textract.Options) {
		o.Region = viper.GetString("aws.region")
	})

	return &TextractClient{
		C:       client,
		columns: viper.GetStringSlice("analysis.column_names"),
	}, nil
}

func (t *TextractClient) Analyze(ctx context.Context, localPath string) (string, []service.Table, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		zap.L().Error("Textract: failed to read document", zap.String("path", localPath), zap.Error(err))
		return "", nil, nil
	}

	out, err := t.C.AnalyzeDocument(ctx, &textract.AnalyzeDocumentInput{
		Document: &types.Document{Bytes: data},
		FeatureTypes: []types.FeatureType{
			types.FeatureTypeTables,
			types.FeatureTypeForms,
		},
	})
	if err != nil {
		zap.L().Error("Textract: document analysis failed", zap.String("path", localPath), zap.Error(err))
		return "", nil, nil
	}

	blockMap := make(map[string]types.Block, len(out.Blocks))
	for _, b := range out.Blocks {
		if b.Id != nil {
			blockMap[*b.Id] = b
		}
	}

	text := extractRawText(out.Blocks)
	tables := extractTables(out.Blocks, blockMap)

	// Detected form fields ride along as one extra two-column table
	if kv := extractKeyValues(out.Blocks, blockMap); len(kv) > 1 {
		tables = append(tables, kv)
	}

	return text, service.FilterTables(tables, t.columns), nil
}

func extractRawText(blocks []types.Block) string {
	var sb strings.Builder

	for _, b := range blocks {
		if b.BlockType == types.BlockTypeLine && b.Text != nil {
			sb.WriteString(*b.Text)
			sb.WriteByte(' ')
		}
	}

	return strings.TrimSpace(sb.String())
}

func extractTables(blocks []types.Block, blockMap map[string]types.Block) []service.Table {
	var tables []service.Table

	for _, b := range blocks {
		if b.BlockType != types.BlockTypeTable {
			continue
		}

		if t := tableRows(b, blockMap); len(t) > 0 {
			tables = append(tables, t)
		}
	}

	return tables
}

// tableRows walks a TABLE block's CHILD cells into dense row-major order.
func tableRows(table types.Block, blockMap map[string]types.Block) service.Table {
	rows := map[int32]map[int32]string{}
	var maxCol int32

	for _, rel := range table.Relationships {
		if rel.Type != types.RelationshipTypeChild {
			continue
		}

		for _, id := range rel.Ids {
			cell, ok := blockMap[id]
			if !ok || cell.BlockType != types.BlockTypeCell {
				continue
			}
			if cell.RowIndex == nil || cell.ColumnIndex == nil {
				continue
			}

			row, col := *cell.RowIndex, *cell.ColumnIndex
			if rows[row] == nil {
				rows[row] = map[int32]string{}
			}
			rows[row][col] = cellText(cell, blockMap)

			if col > maxCol {
				maxCol = col
			}
		}
	}

	rowIdx := make([]int32, 0, len(rows))
	for r := range rows {
		rowIdx = append(rowIdx, r)
	}
	sort.Slice(rowIdx, func(i, j int) bool { return rowIdx[i] < rowIdx[j] })

	out := make(service.Table, 0, len(rowIdx))
	for _, r := range rowIdx {
		row := make([]string, maxCol)
		for c, text := range rows[r] {
			row[c-1] = text
		}
		out = append(out, row)
	}

	return out
}

func cellText(cell types.Block, blockMap map[string]types.Block) string {
	var sb strings.Builder

	for _, rel := range cell.Relationships {
		if rel.Type != types.RelationshipTypeChild {
			continue
		}

		for _, id := range rel.Ids {
			word, ok := blockMap[id]
			if !ok {
				continue
			}

			switch word.BlockType {
			case types.BlockTypeWord:
				if word.Text != nil {
					sb.WriteString(*word.Text)
					sb.WriteByte(' ')
				}
			case types.BlockTypeSelectionElement:
				if word.SelectionStatus == types.SelectionStatusSelected {
					sb.WriteString("X ")
				}
			}
		}
	}

	return strings.TrimSpace(sb.String())
}

// extractKeyValues pairs KEY_VALUE_SET blocks into key/value rows.
func extractKeyValues(blocks []types.Block, blockMap map[string]types.Block) service.Table {
	kv := service.Table{{"key", "value"}}

	for _, b := range blocks {
		if b.BlockType != types.BlockTypeKeyValueSet || !isKeyBlock(b) {
			continue
		}

		key := cellText(b, blockMap)
		if key == "" {
			continue
		}

		var value string
		for _, rel := range b.Relationships {
			if rel.Type != types.RelationshipTypeValue {
				continue
			}

			for _, id := range rel.Ids {
				if vb, ok := blockMap[id]; ok {
					value = cellText(vb, blockMap)
				}
			}
		}

		kv = append(kv, []string{key, value})
	}

	return kv
}

func isKeyBlock(b types.Block) bool {
	for _, e := range b.EntityTypes {
		if e == types.EntityTypeKey {
			return true
		}
	}

	return false
}
