package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/ipastusi/dhcpreact/event"
	"github.com/ipastusi/dhcpreact/lookup/oui"
	"github.com/ipastusi/dhcpreact/notify"
	"github.com/ipastusi/dhcpreact/state"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"
)

// columns

type Column struct {
	name  string
	width int
}

var columns = []Column{
	{"MAC Address", 20},
	{"IP Address", 18},
	{"Name", 24},
	{"MAC Vendor", 26},
	{"Last connected", 22},
	{"Count today", 13},
	{"Notified", 10},
}

// ui data structure

type UIEntry struct {
	MAC           string
	IP            string
	Name          string
	MACVendor     string
	LastConnected string
	Count         int
	Notified      string
}

// virtual table: https://github.com/rivo/tview/wiki/VirtualTable

type UIApp struct {
	tview.TableContentReadOnly
	app  *tview.Application
	mu   sync.Mutex
	data []UIEntry
}

func newUIApp(devices state.Devices) *UIApp {
	uiApp := &UIApp{
		TableContentReadOnly: tview.TableContentReadOnly{},
		app:                  tview.NewApplication(),
	}
	for mac, record := range devices {
		uiApp.data = append(uiApp.data, UIEntry{
			MAC:           mac,
			IP:            record.Ip,
			Name:          deref(record.Name),
			MACVendor:     oui.MacToVendor(mac),
			LastConnected: record.LastConnected.Format(state.TimeLayout),
			Count:         record.ReconnectCountPerDay,
			Notified:      "-",
		})
	}
	slices.SortFunc(uiApp.data, func(a, b UIEntry) int {
		return strings.Compare(b.LastConnected, a.LastConnected)
	})
	return uiApp
}

// observe is registered with the monitor and runs on its goroutine.
func (uiApp *UIApp) observe(ev event.DhcpAck, outcome notify.Outcome) {
	notified := "no"
	if outcome.Notified {
		notified = "yes"
	} else if outcome.Notify {
		notified = "failed"
	}
	entry := UIEntry{
		MAC:           ev.Mac,
		IP:            ev.Ip,
		Name:          deref(outcome.Record.Name),
		MACVendor:     oui.MacToVendor(ev.Mac),
		LastConnected: ev.Ts.Format(state.TimeLayout),
		Count:         outcome.Record.ReconnectCountPerDay,
		Notified:      notified,
	}
	uiApp.app.QueueUpdateDraw(func() {
		uiApp.upsert(entry)
	})
}

// upsert moves the device to the top of the table.
func (uiApp *UIApp) upsert(entry UIEntry) {
	uiApp.mu.Lock()
	defer uiApp.mu.Unlock()
	uiApp.data = slices.DeleteFunc(uiApp.data, func(e UIEntry) bool {
		return e.MAC == entry.MAC
	})
	uiApp.data = slices.Insert(uiApp.data, 0, entry)
}

func (uiApp *UIApp) GetCell(row int, col int) *tview.TableCell {
	uiApp.mu.Lock()
	entry := uiApp.data[row]
	uiApp.mu.Unlock()

	switch col {
	case 0:
		return tview.NewTableCell(alignLeft(" "+entry.MAC, columns[0].width-1))
	case 1:
		return tview.NewTableCell(alignLeft(entry.IP, columns[1].width-1))
	case 2:
		return tview.NewTableCell(alignLeft(truncate(entry.Name, columns[2].width-1), columns[2].width-1))
	case 3:
		return tview.NewTableCell(alignLeft(truncate(entry.MACVendor, columns[3].width-1), columns[3].width-1))
	case 4:
		return tview.NewTableCell(alignLeft(entry.LastConnected, columns[4].width-1))
	case 5:
		return tview.NewTableCell(alignRight(strconv.Itoa(entry.Count), columns[5].width-2))
	default:
		return tview.NewTableCell(alignRight(entry.Notified, columns[6].width-2))
	}
}

func (uiApp *UIApp) GetRowCount() int {
	uiApp.mu.Lock()
	defer uiApp.mu.Unlock()
	return len(uiApp.data)
}

func (uiApp *UIApp) GetColumnCount() int {
	return len(columns)
}

// load the UI

func loadUI(uiApp *UIApp, sourceLabel string, quit func()) error {
	headerRow := getHeaderRow()
	table := tview.NewTable().SetEvaluateAllRows(false)
	table.SetContent(uiApp)

	newTextView := func(text string, align int) tview.Primitive {
		return tview.NewTextView().
			SetTextAlign(align).
			SetText(text)
	}

	titleBar := fmt.Sprintf(" dhcpreact  |  Source: %v ", sourceLabel)
	menuBar := " ▲ - Scroll Up  |  ▼ - Scroll Down  |  Q / ESC - Quit"
	grid := tview.NewGrid().
		SetRows(1, 1, 0, 1).
		SetColumns(0, 0, 0, 0).
		SetBorders(true).
		AddItem(newTextView(titleBar, tview.AlignLeft), 0, 0, 1, 4, 0, 0, false).
		AddItem(newTextView(headerRow, tview.AlignLeft), 1, 0, 1, 4, 0, 0, false).
		AddItem(table, 2, 0, 1, 4, 0, 0, true).
		AddItem(newTextView(menuBar, tview.AlignLeft), 3, 0, 1, 4, 0, 0, false)

	grid.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'q' || event.Key() == tcell.KeyEsc {
			uiApp.app.Stop()
			quit()
			return nil
		} else if event.Key() == tcell.KeyLeft || event.Key() == tcell.KeyRight {
			return nil
		}
		return event
	})

	return uiApp.app.SetRoot(grid, true).Run()
}

func getHeaderRow() string {
	var headers string
	for i, col := range columns {
		var header string
		if i == 0 {
			header = " " + col.name
		} else {
			header = col.name
		}
		headers += alignLeft(header, col.width)
	}
	return headers
}

// alignLeft and alignRight pad to terminal cells, not bytes or runes.
func alignLeft(text string, width int) string {
	return runewidth.FillRight(text, width)
}

func alignRight(text string, width int) string {
	return runewidth.FillLeft(text, width)
}

// truncate cuts text to width terminal cells without splitting a character.
func truncate(text string, width int) string {
	return runewidth.Truncate(text, width, "...")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
