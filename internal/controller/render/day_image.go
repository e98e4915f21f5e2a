// Package render отрисовка расписания дня в PNG для отправки ботом.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"tutormatch/internal/model"
	"tutormatch/internal/timeutil"
)

// Константы размеров и отступов
const (
	imageWidth     = 900
	imageHeight    = 700
	headerHeight   = 70
	leftLabelWidth = 70
	columnPadding  = 30
	blockRadius    = 8.0
	minBlockHeight = 26.0
	hourPadding    = 1
	defaultMinHour = 9
	defaultMaxHour = 18
)

// Цветовая схема
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	headerColor    = color.RGBA{80, 85, 90, 255}
	hourLabelColor = color.RGBA{110, 115, 120, 255}
	hourLineColor  = color.NRGBA{200, 200, 200, 255}
	blockColor     = color.RGBA{133, 193, 85, 230}
	blockTextColor = color.RGBA{20, 24, 28, 255}
	emptyTextColor = color.RGBA{150, 155, 160, 255}
)

// hourRange диапазон часов для отображения
type hourRange struct {
	start int
	end   int
	total int
}

// DayImage рисует активные сессии даты на часовой сетке
func DayImage(date time.Time, sessions []*model.Session) ([]byte, error) {
	hours := calculateHourRange(sessions)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	drawHeader(dc, date, len(sessions))

	gridHeight := float64(imageHeight - headerHeight - columnPadding)
	cellHeight := gridHeight / float64(hours.total)

	drawHourGrid(dc, hours, cellHeight)

	if len(sessions) == 0 {
		dc.SetColor(emptyTextColor)
		dc.DrawStringAnchored("Сессий на эту дату нет", imageWidth/2, imageHeight/2, 0.5, 0.5)
	} else {
		for _, s := range sessions {
			drawSessionBlock(dc, s, hours, cellHeight)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode day image: %w", err)
	}
	return buf.Bytes(), nil
}

// calculateHourRange определяет диапазон часов по окнам сессий
func calculateHourRange(sessions []*model.Session) hourRange {
	minHour := 24
	maxHour := 0

	for _, s := range sessions {
		startH := s.StartMin / 60
		endH := s.EndMin / 60
		if s.EndMin%60 > 0 {
			endH++
		}
		if startH < minHour {
			minHour = startH
		}
		if endH > maxHour {
			maxHour = endH
		}
	}

	if minHour == 24 {
		minHour = defaultMinHour
		maxHour = defaultMaxHour
	}

	startHour := minHour - hourPadding
	endHour := maxHour + hourPadding
	if startHour < 0 {
		startHour = 0
	}
	if endHour > 24 {
		endHour = 24
	}

	return hourRange{
		start: startHour,
		end:   endHour,
		total: endHour - startHour,
	}
}

func drawHeader(dc *gg.Context, date time.Time, count int) {
	dc.SetColor(headerColor)
	title := fmt.Sprintf("Расписание на %s", date.Format("02.01.2006"))
	dc.DrawStringAnchored(title, imageWidth/2, headerHeight/2-8, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("активных сессий: %d", count), imageWidth/2, headerHeight/2+10, 0.5, 0.5)
}

func drawHourGrid(dc *gg.Context, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(1)
	for h := hours.start; h <= hours.end; h++ {
		y := float64(headerHeight) + float64(h-hours.start)*cellHeight

		dc.SetColor(hourLineColor)
		dc.DrawLine(leftLabelWidth, y, imageWidth-columnPadding, y)
		dc.Stroke()

		dc.SetColor(hourLabelColor)
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", h), leftLabelWidth-8, y, 1, 0.35)
	}
}

func drawSessionBlock(dc *gg.Context, s *model.Session, hours hourRange, cellHeight float64) {
	minuteHeight := cellHeight / 60

	y := float64(headerHeight) + float64(s.StartMin-hours.start*60)*minuteHeight
	height := float64(s.EndMin-s.StartMin) * minuteHeight
	if height < minBlockHeight {
		height = minBlockHeight
	}

	x := float64(leftLabelWidth + 10)
	width := float64(imageWidth - columnPadding - leftLabelWidth - 20)

	dc.SetColor(blockColor)
	dc.DrawRoundedRectangle(x, y, width, height, blockRadius)
	dc.Fill()

	label := fmt.Sprintf("%s  %s  (участников: %d)",
		s.Subject, timeutil.FormatWindow(s.StartMin, s.EndMin), s.MemberCount)
	dc.SetColor(blockTextColor)
	dc.DrawStringAnchored(label, x+12, y+height/2, 0, 0.35)
}
