package handler

import (
	"fmt"
	"time"

	"github.com/dompetkeluarga/backend/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

var transactionKindLabels = map[model.TransactionKind]string{
	model.TransactionIncome:     "Pemasukan",
	model.TransactionExpense:    "Pengeluaran",
	model.TransactionTransfer:   "Transfer",
	model.TransactionInvestment: "Investasi",
}

// exportTransactions streams the user's transactions as an XLSX
// workbook. The same start/end/walletId filters as the list endpoint
// apply.
func (h *Handler) exportTransactions(c *gin.Context) {
	uid := userID(c)

	filter, err := parseTransactionFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	transactions, err := h.svc.ListTransactions(c.Request.Context(), uid, filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	wallets, err := h.svc.ListWallets(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err)
		return
	}
	walletNames := make(map[string]string, len(wallets))
	for _, w := range wallets {
		walletNames[w.ID] = w.Name
	}

	f := excelize.NewFile()
	sheet := "Transaksi"
	index, err := f.NewSheet(sheet)
	if err != nil {
		h.fail(c, err)
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Tanggal", "Tipe", "Kategori", "Dompet", "Jumlah (Rp)", "Catatan"}
	for i, head := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, head)
	}

	var totalIncome, totalExpense int64
	for idx, t := range transactions {
		row := idx + 2

		switch t.Kind {
		case model.TransactionIncome:
			totalIncome += t.Amount
		case model.TransactionExpense:
			totalExpense += t.Amount
		}

		dateStr := ""
		if !t.Date.IsZero() {
			dateStr = t.Date.Format("2006-01-02")
		}
		kind := transactionKindLabels[t.Kind]
		if kind == "" {
			kind = string(t.Kind)
		}
		wallet := walletNames[t.WalletID]
		if t.Kind == model.TransactionTransfer {
			wallet = walletNames[t.SourceWalletID] + " > " + walletNames[t.TargetWalletID]
		}

		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), dateStr)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), kind)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), t.Category)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), wallet)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), t.Amount)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), t.Note)
	}

	// Totals footer, one blank row below the data, in display format.
	totalRow := len(transactions) + 3
	f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), "Total Pemasukan")
	f.SetCellValue(sheet, fmt.Sprintf("E%d", totalRow), model.FormatIDR(totalIncome))
	f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow+1), "Total Pengeluaran")
	f.SetCellValue(sheet, fmt.Sprintf("E%d", totalRow+1), model.FormatIDR(totalExpense))

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 12)
	f.SetColWidth(sheet, "C", "C", 18)
	f.SetColWidth(sheet, "D", "D", 24)
	f.SetColWidth(sheet, "E", "E", 15)
	f.SetColWidth(sheet, "F", "F", 32)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transaksi_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		h.log.Error().Err(err).Msg("failed to write export workbook")
	}
}
