package keyboard

import (
	"fmt"
	"strconv"
)

// PaginationButtons returns up to three inline buttons (prev, current page,
// next) sharing an action prefix, e.g. "workers_page_".
func PaginationButtons(prefix string, page, totalPages int) []InlineButton {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	buttons := make([]InlineButton, 0, 3)

	if page > 1 {
		buttons = append(buttons, InlineButton{
			Text: "◀️ Назад",
			Data: prefix + strconv.Itoa(page-1),
		})
	}

	buttons = append(buttons, InlineButton{
		Text: fmt.Sprintf("Стр. %d/%d", page, totalPages),
		Data: prefix + strconv.Itoa(page),
	})

	if page < totalPages {
		buttons = append(buttons, InlineButton{
			Text: "Вперёд ▶️",
			Data: prefix + strconv.Itoa(page+1),
		})
	}

	return buttons
}
