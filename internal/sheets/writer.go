// Package sheets writes frames to Google Sheets worksheets and manages
// the spreadsheets reachable with a service account.
package sheets

import (
	"context"
	"fmt"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/crestline-data/datamove/internal/logging"
	"github.com/crestline-data/datamove/pkg/datamove"
)

// maxCells is the Google Sheets per-spreadsheet cell budget.
const maxCells = 10_000_000

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// Client wraps the Sheets and Drive services behind one service account.
type Client struct {
	sheets *sheets.Service
	drive  *drive.Service
	log    datamove.Logger
}

// NewClient authenticates with a service-account credentials file.
func NewClient(ctx context.Context, credentialsFile string, log datamove.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNullLogger()
	}

	sheetsSvc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return &Client{sheets: sheetsSvc, drive: driveSvc, log: log}, nil
}

// WriteOptions tunes WriteFrame.
type WriteOptions struct {
	// ClearExisting wipes the worksheet's values before writing.
	ClearExisting bool

	// ResizeExisting resizes the worksheet grid to exactly fit the frame
	// plus its header row.
	ResizeExisting bool

	// LeadingCharacter is prepended to every data value so Sheets does
	// not reinterpret it as a formula or date. Empty disables escaping.
	LeadingCharacter string
}

// DefaultWriteOptions mirrors the conventional write behavior: clear,
// resize, and protect values with a leading apostrophe.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{ClearExisting: true, ResizeExisting: true, LeadingCharacter: "'"}
}

// WriteFrame writes a frame (header plus records) to the named worksheet
// of an existing spreadsheet.
func (c *Client) WriteFrame(ctx context.Context, spreadsheetID, worksheet string, frame *datamove.Frame, opts WriteOptions) error {
	rows, cols := frame.RowCount(), frame.ColumnCount()
	if cells := (rows + 1) * cols; cells > maxCells {
		return fmt.Errorf("frame needs %d cells, sheet limit is %d: %w", cells, maxCells, datamove.ErrFrameTooLarge)
	}
	c.log.Verbose("writing %dx%d frame to spreadsheet %s worksheet %q", rows, cols, spreadsheetID, worksheet)

	sheetID, err := c.worksheetID(ctx, spreadsheetID, worksheet)
	if err != nil {
		return err
	}

	if opts.ResizeExisting {
		resize := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId: sheetID,
						GridProperties: &sheets.GridProperties{
							RowCount:    int64(rows + 1),
							ColumnCount: int64(cols),
						},
					},
					Fields: "gridProperties.rowCount,gridProperties.columnCount",
				},
			}},
		}
		if _, err := c.sheets.Spreadsheets.BatchUpdate(spreadsheetID, resize).Context(ctx).Do(); err != nil {
			return fmt.Errorf("resizing worksheet %q: %w", worksheet, err)
		}
	}

	if opts.ClearExisting {
		rng := fmt.Sprintf("'%s'", worksheet)
		if _, err := c.sheets.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
			return fmt.Errorf("clearing worksheet %q: %w", worksheet, err)
		}
	}

	valueRange := &sheets.ValueRange{Values: frameValues(frame, opts.LeadingCharacter)}
	rng := fmt.Sprintf("'%s'!A1", worksheet)
	_, err = c.sheets.Spreadsheets.Values.Update(spreadsheetID, rng, valueRange).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing values to worksheet %q: %w", worksheet, err)
	}
	c.log.Info("wrote %d rows to %s/%s", rows, spreadsheetID, worksheet)
	return nil
}

// worksheetID resolves a worksheet title to its sheet id.
func (c *Client) worksheetID(ctx context.Context, spreadsheetID, worksheet string) (int64, error) {
	spreadsheet, err := c.sheets.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("fetching spreadsheet %s: %w", spreadsheetID, err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == worksheet {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("worksheet %q not found in spreadsheet %s: %w", worksheet, spreadsheetID, datamove.ErrInvalidConfig)
}

// frameValues converts a frame to the Sheets value grid: unescaped header
// row, then records with the leading character applied.
func frameValues(frame *datamove.Frame, leading string) [][]interface{} {
	values := make([][]interface{}, 0, frame.RowCount()+1)

	header := make([]interface{}, frame.ColumnCount())
	for i, c := range frame.Columns {
		header[i] = c
	}
	values = append(values, header)

	for _, rec := range frame.Records {
		row := make([]interface{}, len(rec))
		for i, v := range rec {
			row[i] = leading + v
		}
		values = append(values, row)
	}
	return values
}

// SpreadsheetInfo identifies one accessible spreadsheet.
type SpreadsheetInfo struct {
	ID       string
	Title    string
	Modified time.Time
}

// ListSpreadsheets enumerates every spreadsheet the service account can
// reach, following Drive result pages.
func (c *Client) ListSpreadsheets(ctx context.Context) ([]SpreadsheetInfo, error) {
	var all []SpreadsheetInfo
	pageToken := ""
	for {
		call := c.drive.Files.List().
			Q(fmt.Sprintf("mimeType='%s'", spreadsheetMimeType)).
			Fields("nextPageToken, files(id, name, modifiedTime)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("listing spreadsheets: %w", err)
		}
		for _, f := range list.Files {
			info := SpreadsheetInfo{ID: f.Id, Title: f.Name}
			if ts, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
				info.Modified = ts
			}
			all = append(all, info)
		}
		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}
	c.log.Info("%d spreadsheets found", len(all))
	return all, nil
}

// PurgeSpreadsheets deletes every accessible spreadsheet except those in
// keep. Returns the number deleted.
func (c *Client) PurgeSpreadsheets(ctx context.Context, keep []string) (int, error) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}

	all, err := c.ListSpreadsheets(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, info := range all {
		if _, ok := keepSet[info.ID]; ok {
			continue
		}
		c.log.Info("deleting spreadsheet %q (%s)", info.Title, info.ID)
		if err := c.drive.Files.Delete(info.ID).Context(ctx).Do(); err != nil {
			return deleted, fmt.Errorf("deleting spreadsheet %s: %w", info.ID, err)
		}
		deleted++
	}
	c.log.Info("%d spreadsheets kept, %d deleted", len(all)-deleted, deleted)
	return deleted, nil
}
