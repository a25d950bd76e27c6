package assistant

import (
	"fmt"
	"strings"

	"github.com/wonny/fii-advisor/backend/internal/insights"
	"github.com/wonny/fii-advisor/backend/internal/locale"
)

// ChatContext is the system instruction of the FII chat
const ChatContext = "Você é um especialista em Fundos Imobiliários (FIIs) do mercado brasileiro. " +
	"Forneça respostas claras e objetivas sobre FIIs, incluindo análises, recomendações e explicações " +
	"sobre conceitos importantes do mercado. Mantenha um tom profissional e educativo."

const analysisContext = "Você é um analista financeiro especializado em Fundos Imobiliários (FIIs) do Brasil."

const reportContext = "Você é um analista financeiro especializado em Fundos Imobiliários (FIIs) do Brasil. " +
	"Resuma relatórios gerenciais de forma objetiva, em português."

// AnalysisPrompt renders the fund analysis request
func AnalysisPrompt(p insights.FundProfile) string {
	quota := "indisponível"
	if p.Price > 0 {
		quota = locale.FormatNumber(p.Price)
	}

	var b strings.Builder
	b.WriteString("Analise os dados abaixo e forneça insights valiosos sobre o FII em questão.\n\n")
	b.WriteString("Dados do FII:\n")
	fmt.Fprintf(&b, "- Ticker: %s\n", p.Ticker)
	fmt.Fprintf(&b, "- Dividend Yield Mensal Atual: %s%%\n", locale.FormatNumber(p.DividendYield))
	fmt.Fprintf(&b, "- Patrimônio Líquido: R$ %s\n", locale.FormatNumber(p.NetEquity))
	fmt.Fprintf(&b, "- Valor da Cota: R$ %s\n", quota)
	fmt.Fprintf(&b, "- Total de Cotistas: %.0f\n", p.Holders)
	fmt.Fprintf(&b, "- Segmento: %s\n\n", p.Segment)
	b.WriteString("Foque em:\n")
	b.WriteString("1. Resumo sobre o FII\n")
	b.WriteString("2. Avaliação do patrimônio líquido\n")
	b.WriteString("3. Considerações sobre o segmento\n")
	b.WriteString("4. Riscos e oportunidades\n\n")
	b.WriteString("Mantenha um tom profissional e objetivo.")
	return b.String()
}

// ReportPrompt asks for a summary of an extracted management report
func ReportPrompt(ticker, text string) string {
	return fmt.Sprintf("Resuma o relatório gerencial do fundo %s abaixo. "+
		"Destaque resultados, distribuição de rendimentos, vacância e eventos relevantes.\n\n%s", ticker, text)
}
